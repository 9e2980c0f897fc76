package bayes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
	"go.uber.org/zap"
)

// ErrEmptyText is returned when there is nothing left to classify after
// preprocessing.
var ErrEmptyText = errors.New("empty or invalid text")

// Sample is one labeled training document.
type Sample struct {
	Text string
	Spam bool
}

// Classifier is a multinomial naive-Bayes text classifier trained on a
// labeled spam/ham corpus. Model counts are fixed after Train, so a single
// instance is safe for concurrent Classify calls without locking.
type Classifier struct {
	spamTokens  map[string]int
	hamTokens   map[string]int
	spamTotal   int
	hamTotal    int
	spamDocs    int
	hamDocs     int
	vocabulary  map[string]struct{}
	maxBodySize int

	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifier creates an untrained classifier.
func NewClassifier(maxBodySize int, logger *zap.Logger, textProcessor *utils.TextProcessor) *Classifier {
	return &Classifier{
		spamTokens:    make(map[string]int),
		hamTokens:     make(map[string]int),
		vocabulary:    make(map[string]struct{}),
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Train fits the model on the given corpus. It may only be called before the
// classifier is shared across goroutines.
func (c *Classifier) Train(samples []Sample) error {
	trained := 0
	for _, sample := range samples {
		tokens := tokenize(sample.Text)
		if len(tokens) == 0 {
			continue
		}
		if sample.Spam {
			c.spamDocs++
		} else {
			c.hamDocs++
		}
		for _, token := range tokens {
			c.vocabulary[token] = struct{}{}
			if sample.Spam {
				c.spamTokens[token]++
				c.spamTotal++
			} else {
				c.hamTokens[token]++
				c.hamTotal++
			}
		}
		trained++
	}
	if c.spamDocs == 0 || c.hamDocs == 0 {
		return fmt.Errorf("training corpus needs both spam and ham samples (spam=%d ham=%d)", c.spamDocs, c.hamDocs)
	}

	c.logger.Info("Trained naive-Bayes classifier",
		zap.Int("documents", trained),
		zap.Int("spam_documents", c.spamDocs),
		zap.Int("ham_documents", c.hamDocs),
		zap.Int("vocabulary_size", len(c.vocabulary)))
	return nil
}

// Classify labels the text as spam or ham with the posterior spam
// probability. The computation is deterministic for a fixed model.
func (c *Classifier) Classify(ctx context.Context, text string) (*core.TextClassification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.spamDocs == 0 || c.hamDocs == 0 {
		return nil, errors.New("classifier is not trained")
	}

	processed := c.textProcessor.ProcessText(text, c.maxBodySize)
	tokens := tokenize(processed)
	if len(tokens) == 0 {
		return nil, ErrEmptyText
	}

	// Log-space scoring with Laplace smoothing.
	vocab := float64(len(c.vocabulary))
	logSpam := math.Log(float64(c.spamDocs) / float64(c.spamDocs+c.hamDocs))
	logHam := math.Log(float64(c.hamDocs) / float64(c.spamDocs+c.hamDocs))
	for _, token := range tokens {
		logSpam += math.Log((float64(c.spamTokens[token]) + 1) / (float64(c.spamTotal) + vocab))
		logHam += math.Log((float64(c.hamTokens[token]) + 1) / (float64(c.hamTotal) + vocab))
	}

	// Convert the two log scores into a spam probability.
	probability := 1.0 / (1.0 + math.Exp(logHam-logSpam))

	label := "ham"
	if probability > 0.5 {
		label = "spam"
	}

	return &core.TextClassification{
		Label:       label,
		Probability: probability,
		ModelUsed:   "naive-bayes",
		AnalyzedAt:  time.Now(),
	}, nil
}

// tokenize lowercases, strips punctuation and splits on whitespace.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}
