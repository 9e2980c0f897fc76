package factory

import (
	"fmt"
	"strings"

	"github.com/phishguard/phishguard/internal/adapters/bayes"
	"github.com/phishguard/phishguard/internal/adapters/bedrock"
	"github.com/phishguard/phishguard/internal/adapters/gemini"
	"github.com/phishguard/phishguard/internal/adapters/openai"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
	"go.uber.org/zap"
)

// CreateTextClassifier creates the configured ML classifier. Provider "none"
// returns a nil classifier, which makes the engine run rule-only.
func CreateTextClassifier(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) (core.TextClassifier, error) {
	provider := strings.ToLower(cfg.GetClassifier().Provider)

	switch provider {
	case "", "none":
		logger.Info("No ML classifier configured, running rule-only")
		return nil, nil
	case "bayes":
		return bayes.NewFactory(cfg, logger, textProcessor).CreateClassifier()
	case "openai":
		return openai.NewFactory(cfg, logger, textProcessor).CreateClassifier()
	case "gemini":
		return gemini.NewFactory(cfg, logger, textProcessor).CreateClassifier()
	case "bedrock":
		return bedrock.NewFactory(cfg, logger, textProcessor).CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", provider)
	}
}
