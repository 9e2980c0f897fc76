package factory

import (
	"github.com/phishguard/phishguard/internal/adapters/filter"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/ports"
	"go.uber.org/zap"
)

// CreateEmailFilter creates the SMTP filter front end when it is enabled.
// A nil filter means the service runs API-only.
func CreateEmailFilter(cfg *config.Config, service *core.ThreatService, logger *zap.Logger) (ports.EmailFilter, error) {
	smtpCfg := cfg.GetSMTP()
	if !smtpCfg.Enabled {
		logger.Info("SMTP filter disabled, running API-only")
		return nil, nil
	}
	return filter.NewSMTPFilter(service, smtpCfg, logger), nil
}
