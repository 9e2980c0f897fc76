package di

import (
	"fmt"

	"github.com/phishguard/phishguard/internal/analysis"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/factory"
	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/ports"
	"github.com/phishguard/phishguard/internal/server"
	"github.com/phishguard/phishguard/internal/utils"
	"github.com/phishguard/phishguard/internal/whitelist"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

// BuildContainer creates and configures the dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Provide configuration
	if err := container.Provide(config.New); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}

	// Provide logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, fmt.Errorf("failed to provide logger: %w", err)
	}

	// Provide text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, fmt.Errorf("failed to provide text processor: %w", err)
	}

	// Provide rule-based analyzer
	if err := container.Provide(func(logger *zap.Logger) *analysis.Analyzer {
		return analysis.NewAnalyzer(analysis.DefaultRuleSet(), logger)
	}, dig.As(new(core.EmailAnalyzer))); err != nil {
		return nil, fmt.Errorf("failed to provide analyzer: %w", err)
	}

	// Provide ML classifier
	if err := container.Provide(factory.CreateTextClassifier); err != nil {
		return nil, fmt.Errorf("failed to provide classifier: %w", err)
	}

	// Provide assessment store
	if err := container.Provide(factory.CreateAssessmentStore); err != nil {
		return nil, fmt.Errorf("failed to provide assessment store: %w", err)
	}

	// Provide trusted-domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetEngine().TrustedDomains, logger)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide whitelist checker: %w", err)
	}

	// Provide threat service
	if err := container.Provide(func(
		cfg *config.Config,
		analyzer core.EmailAnalyzer,
		classifier core.TextClassifier,
		assessmentStore core.AssessmentStore,
		whitelistChecker *whitelist.Checker,
		logger *zap.Logger,
	) (*core.ThreatService, error) {
		timeout, err := cfg.GetDuration("classifier.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid classifier timeout: %w", err)
		}
		return core.NewThreatService(analyzer, classifier, assessmentStore, whitelistChecker, logger, timeout), nil
	}); err != nil {
		return nil, fmt.Errorf("failed to provide threat service: %w", err)
	}

	// Provide SMTP filter
	if err := container.Provide(func(
		cfg *config.Config,
		service *core.ThreatService,
		logger *zap.Logger,
	) (ports.EmailFilter, error) {
		return factory.CreateEmailFilter(cfg, service, logger)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide email filter: %w", err)
	}

	// Provide HTTP server
	if err := container.Provide(func(
		cfg *config.Config,
		service *core.ThreatService,
		assessmentStore core.AssessmentStore,
		logger *zap.Logger,
	) *server.Server {
		return server.New(service, assessmentStore, cfg.GetServer(), logger)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP server: %w", err)
	}

	return container, nil
}
