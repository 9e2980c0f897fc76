package bayes

import (
	"fmt"

	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
	"go.uber.org/zap"
)

// Factory creates trained naive-Bayes classifiers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for naive-Bayes classifiers
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier loads the configured dataset and trains a classifier on it
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	bayesCfg := f.cfg.GetBayes()

	samples, err := LoadCSV(bayesCfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load training dataset: %w", err)
	}

	classifier := NewClassifier(bayesCfg.MaxBodySize, f.logger, f.textProcessor)
	if err := classifier.Train(samples); err != nil {
		return nil, fmt.Errorf("failed to train classifier: %w", err)
	}
	return classifier, nil
}
