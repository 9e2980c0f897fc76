package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phishguard/phishguard/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyzer struct {
	result ThreatAssessment
	calls  int
}

func (s *stubAnalyzer) Analyze(email *NormalizedEmail) *ThreatAssessment {
	s.calls++
	copied := s.result
	return &copied
}

type stubClassifier struct {
	result *TextClassification
	err    error
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (*TextClassification, error) {
	s.calls++
	return s.result, s.err
}

type stubStore struct {
	saved []*StoredAssessment
	err   error
}

func (s *stubStore) Save(ctx context.Context, a *StoredAssessment) error {
	s.saved = append(s.saved, a)
	return s.err
}

func (s *stubStore) Recent(ctx context.Context, limit int) ([]*StoredAssessment, error) {
	return nil, nil
}

func (s *stubStore) Stats(ctx context.Context, since time.Time) (*AssessmentStats, error) {
	return nil, nil
}

func (s *stubStore) Cleanup(ctx context.Context) error { return nil }

func ruleAssessment(score float64, indicators ...string) ThreatAssessment {
	return ThreatAssessment{
		Score:      score,
		Level:      LevelForScore(score),
		Action:     ActionForScore(score),
		Indicators: indicators,
		EngineUsed: "rules",
		AnalyzedAt: time.Now(),
	}
}

func TestAssessRuleOnly(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.3, "urgency_indicators")}
	service := NewThreatService(analyzer, nil, nil, nil, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), &NormalizedEmail{SenderEmail: "x@example.com"})

	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)
	assert.InDelta(t, 0.3, assessment.Score, 0.001)
	assert.Equal(t, "rules", assessment.EngineUsed)
	assert.Nil(t, assessment.ML)
}

func TestAssessBlendsWeakScoreWithSpamVerdict(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.3, "a", "b")}
	classifier := &stubClassifier{result: &TextClassification{Label: "spam", Probability: 0.9}}
	service := NewThreatService(analyzer, classifier, nil, nil, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), &NormalizedEmail{Subject: "buy now"})

	require.NoError(t, err)
	// 0.7 * 0.3 + 0.3 * 0.9
	assert.InDelta(t, 0.48, assessment.Score, 0.001)
	assert.Equal(t, LevelMedium, assessment.Level)
	assert.Equal(t, ActionFlag, assessment.Action)
	assert.Equal(t, "rules+ml", assessment.EngineUsed)
	require.NotNil(t, assessment.ML)
	assert.Equal(t, "spam", assessment.ML.Label)
}

func TestAssessBlendingNeverLowersScore(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.85, "known_malicious_domain")}
	classifier := &stubClassifier{result: &TextClassification{Label: "spam", Probability: 0.55}}
	service := NewThreatService(analyzer, classifier, nil, nil, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), &NormalizedEmail{})

	require.NoError(t, err)
	assert.InDelta(t, 0.85, assessment.Score, 0.001)
	assert.Equal(t, LevelCritical, assessment.Level)
	assert.Equal(t, ActionQuarantine, assessment.Action)
	assert.Equal(t, "rules", assessment.EngineUsed)
}

func TestAssessHamVerdictDoesNotBlend(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.3)}
	classifier := &stubClassifier{result: &TextClassification{Label: "ham", Probability: 0.1}}
	service := NewThreatService(analyzer, classifier, nil, nil, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), &NormalizedEmail{})

	require.NoError(t, err)
	assert.InDelta(t, 0.3, assessment.Score, 0.001)
	assert.Equal(t, "rules", assessment.EngineUsed)
	require.NotNil(t, assessment.ML)
	assert.Equal(t, "ham", assessment.ML.Label)
}

func TestAssessClassifierFailureDegradesToRuleOnly(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.3)}
	classifier := &stubClassifier{err: errors.New("model unavailable")}
	service := NewThreatService(analyzer, classifier, nil, nil, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), &NormalizedEmail{})

	require.NoError(t, err)
	assert.Equal(t, 1, classifier.calls)
	assert.InDelta(t, 0.3, assessment.Score, 0.001)
	assert.Equal(t, "rules", assessment.EngineUsed)
	assert.Nil(t, assessment.ML)
}

func TestAssessTrustedDomainBypassesAnalysis(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.9)}
	checker := whitelist.NewChecker([]string{"Example.com"}, zap.NewNop())
	service := NewThreatService(analyzer, nil, nil, checker, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), &NormalizedEmail{
		SenderEmail: "boss@example.com",
	})

	require.NoError(t, err)
	assert.Zero(t, analyzer.calls)
	assert.Equal(t, LevelClean, assessment.Level)
	assert.Equal(t, ActionAllow, assessment.Action)
	assert.Equal(t, 1.0, assessment.Confidence)
	assert.Equal(t, "trusted", assessment.EngineUsed)
}

func TestAssessUntrustedDomainIsAnalyzed(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.2)}
	checker := whitelist.NewChecker([]string{"example.com"}, zap.NewNop())
	service := NewThreatService(analyzer, nil, nil, checker, zap.NewNop(), time.Second)

	_, err := service.Assess(context.Background(), &NormalizedEmail{
		SenderEmail: "stranger@elsewhere.net",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)
}

func TestAssessPersistsSummary(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.45, "suspicious_tld")}
	persistence := &stubStore{}
	service := NewThreatService(analyzer, nil, persistence, nil, zap.NewNop(), time.Second)

	_, err := service.Assess(context.Background(), &NormalizedEmail{
		Subject:     "Offer",
		SenderEmail: "seller@shop.tk",
	})

	require.NoError(t, err)
	require.Len(t, persistence.saved, 1)
	saved := persistence.saved[0]
	assert.Equal(t, "Offer", saved.Subject)
	assert.Equal(t, "seller@shop.tk", saved.Sender)
	assert.InDelta(t, 0.45, saved.Score, 0.001)
	assert.Equal(t, LevelMedium, saved.Level)
	assert.Equal(t, []string{"suspicious_tld"}, saved.Indicators)
}

func TestAssessStoreFailureDoesNotFailAssessment(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0.1)}
	persistence := &stubStore{err: errors.New("disk full")}
	service := NewThreatService(analyzer, nil, persistence, nil, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), &NormalizedEmail{})

	require.NoError(t, err)
	assert.NotNil(t, assessment)
}

func TestAssessNilEmail(t *testing.T) {
	analyzer := &stubAnalyzer{result: ruleAssessment(0)}
	service := NewThreatService(analyzer, nil, nil, nil, zap.NewNop(), time.Second)

	assessment, err := service.Assess(context.Background(), nil)

	require.NoError(t, err)
	assert.NotNil(t, assessment)
}
