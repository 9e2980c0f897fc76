package core

import (
	"context"
	"time"
)

// EmailAnalyzer is the rule-based scoring engine capability. Implementations
// must be pure: the same email always yields the same assessment.
type EmailAnalyzer interface {
	// Analyze scores a normalized email and returns the full assessment.
	Analyze(email *NormalizedEmail) *ThreatAssessment
}

// TextClassifier is the optional ML capability. The engine degrades to
// rule-only scoring when no classifier is configured or a call fails.
type TextClassifier interface {
	// Classify labels a piece of text as spam or ham with a probability.
	Classify(ctx context.Context, text string) (*TextClassification, error)
}

// AssessmentStore persists assessments and serves dashboard queries.
type AssessmentStore interface {
	// Save records an assessment summary and one threat row per indicator.
	Save(ctx context.Context, a *StoredAssessment) error

	// Recent returns the most recently stored assessments, newest first.
	Recent(ctx context.Context, limit int) ([]*StoredAssessment, error)

	// Stats aggregates level/action distributions for assessments stored
	// since the given time.
	Stats(ctx context.Context, since time.Time) (*AssessmentStats, error)

	// Cleanup removes assessments past the retention period.
	Cleanup(ctx context.Context) error
}
