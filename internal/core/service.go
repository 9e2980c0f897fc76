package core

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/whitelist"
	"go.uber.org/zap"
)

// ThreatService is the core service for email threat assessment. It owns the
// rule engine plus the optional ML classifier boundary and keeps no state
// across calls.
type ThreatService struct {
	analyzer          EmailAnalyzer
	classifier        TextClassifier
	store             AssessmentStore
	whitelist         *whitelist.Checker
	logger            *zap.Logger
	classifierTimeout time.Duration
}

// NewThreatService creates a new threat assessment service. classifier,
// store and whitelistChecker may be nil; the service then runs rule-only,
// skips persistence and trusts no one.
func NewThreatService(
	analyzer EmailAnalyzer,
	classifier TextClassifier,
	store AssessmentStore,
	whitelistChecker *whitelist.Checker,
	logger *zap.Logger,
	classifierTimeout time.Duration,
) *ThreatService {
	return &ThreatService{
		analyzer:          analyzer,
		classifier:        classifier,
		store:             store,
		whitelist:         whitelistChecker,
		logger:            logger,
		classifierTimeout: classifierTimeout,
	}
}

// Assess scores an email and returns the full assessment. Classifier
// failures degrade to rule-only scoring; persistence failures are logged and
// never surfaced to the caller.
func (s *ThreatService) Assess(ctx context.Context, email *NormalizedEmail) (*ThreatAssessment, error) {
	if email == nil {
		email = &NormalizedEmail{}
	}

	if s.whitelist != nil && s.whitelist.IsTrusted(email.SenderEmail) {
		s.logger.Info("Skipping assessment for trusted domain",
			zap.String("sender", email.SenderEmail),
			zap.String("action", "trusted_bypass"))
		return &ThreatAssessment{
			Level:      LevelClean,
			Action:     ActionAllow,
			Confidence: 1.0,
			Indicators: []string{},
			EngineUsed: "trusted",
			AnalyzedAt: time.Now(),
		}, nil
	}

	assessment := s.analyzer.Analyze(email)

	if s.classifier != nil {
		s.augmentWithClassifier(ctx, email, assessment)
	}

	if s.store != nil {
		if err := s.store.Save(ctx, summarize(email, assessment)); err != nil {
			s.logger.Error("Failed to persist assessment", zap.Error(err))
		}
	}

	s.logger.Info("Email assessed",
		zap.String("sender", email.SenderEmail),
		zap.Float64("threat_score", assessment.Score),
		zap.String("threat_level", string(assessment.Level)),
		zap.String("recommended_action", string(assessment.Action)),
		zap.String("engine", assessment.EngineUsed))

	return assessment, nil
}

// augmentWithClassifier consults the ML classifier and blends its verdict
// into a weak rule score. Blending only happens when the classifier calls
// the mail spam, in which case its probability exceeds the weak rule score
// and the blend can only raise it; a rule verdict of critical is therefore
// never lowered.
func (s *ThreatService) augmentWithClassifier(ctx context.Context, email *NormalizedEmail, assessment *ThreatAssessment) {
	if s.classifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.classifierTimeout)
		defer cancel()
	}

	text := strings.TrimSpace(email.Subject + " " + email.BodyText)
	classification, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("Classifier unavailable, using rule-only score", zap.Error(err))
		return
	}
	assessment.ML = classification

	if assessment.Score < 0.5 && classification.IsSpam() {
		blended := 0.7*assessment.Score + 0.3*classification.Probability
		if blended > assessment.Score {
			assessment.Score = blended
			assessment.Level = LevelForScore(blended)
			assessment.Action = ActionForScore(blended)
			assessment.Confidence = math.Min(0.9, 0.6+0.05*float64(len(assessment.Indicators))+0.3*blended)
		}
		assessment.EngineUsed = "rules+ml"
	}
}

// summarize converts an assessment into its persisted form.
func summarize(email *NormalizedEmail, a *ThreatAssessment) *StoredAssessment {
	return &StoredAssessment{
		Subject:    email.Subject,
		Sender:     email.SenderEmail,
		Score:      a.Score,
		Level:      a.Level,
		Action:     a.Action,
		IsPhishing: a.IsPhishing,
		IsSpam:     a.IsSpam,
		IsMalware:  a.IsMalware,
		Indicators: a.Indicators,
		CreatedAt:  a.AnalyzedAt,
	}
}
