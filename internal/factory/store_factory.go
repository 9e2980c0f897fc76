package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/adapters/store"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"go.uber.org/zap"
)

// CreateAssessmentStore creates the configured assessment store.
func CreateAssessmentStore(cfg *config.Config, logger *zap.Logger) (core.AssessmentStore, error) {
	storeCfg := cfg.GetStore()

	retention, err := time.ParseDuration(storeCfg.Retention)
	if err != nil {
		return nil, fmt.Errorf("invalid store retention: %w", err)
	}
	cleanupFrequency, err := time.ParseDuration(storeCfg.CleanupFrequency)
	if err != nil {
		return nil, fmt.Errorf("invalid store cleanup frequency: %w", err)
	}

	switch strings.ToLower(storeCfg.Type) {
	case "memory":
		return store.NewMemoryStore(retention, cleanupFrequency, logger), nil
	case "sqlite":
		return store.NewSQLiteStore(storeCfg.SQLitePath, retention, cleanupFrequency, logger)
	case "mysql":
		return store.NewMySQLStore(storeCfg.MySQLDSN, retention, cleanupFrequency, logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
