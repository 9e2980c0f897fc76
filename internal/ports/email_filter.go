package ports

import (
	"context"

	"github.com/phishguard/phishguard/internal/core"
)

// EmailFilter defines the interface for email ingestion front ends
type EmailFilter interface {
	// ProcessEmail assesses a normalized email and returns the result
	ProcessEmail(ctx context.Context, email *core.NormalizedEmail) (*core.ThreatAssessment, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
