package filter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/phishguard/phishguard/internal/core"
	"go.uber.org/zap"
)

// CLIFilter scores a single message read from a stream and writes a
// human-readable report. It backs the threat-scan command.
type CLIFilter struct {
	service *core.ThreatService
	input   io.Reader
	output  io.Writer
	logger  *zap.Logger
}

// NewCLIFilter creates a new CLI filter.
func NewCLIFilter(service *core.ThreatService, input io.Reader, output io.Writer, logger *zap.Logger) *CLIFilter {
	return &CLIFilter{
		service: service,
		input:   input,
		output:  output,
		logger:  logger,
	}
}

// ProcessEmail assesses a single normalized email.
func (f *CLIFilter) ProcessEmail(ctx context.Context, email *core.NormalizedEmail) (*core.ThreatAssessment, error) {
	return f.service.Assess(ctx, email)
}

// Start reads one message from the input stream, assesses it and writes the
// report.
func (f *CLIFilter) Start() error {
	email, err := ParseMessage(f.input)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	assessment, err := f.ProcessEmail(context.Background(), email)
	if err != nil {
		return fmt.Errorf("failed to assess message: %w", err)
	}

	return WriteReport(f.output, email, assessment)
}

// Stop is a no-op for the CLI filter.
func (f *CLIFilter) Stop() error {
	return nil
}

// WriteReport renders an assessment as a human-readable report.
func WriteReport(w io.Writer, email *core.NormalizedEmail, a *core.ThreatAssessment) error {
	var b strings.Builder

	b.WriteString("Threat Assessment\n")
	b.WriteString("=================\n")
	fmt.Fprintf(&b, "Sender:       %s\n", email.SenderEmail)
	fmt.Fprintf(&b, "Subject:      %s\n", email.Subject)
	fmt.Fprintf(&b, "Score:        %.3f\n", a.Score)
	fmt.Fprintf(&b, "Level:        %s\n", a.Level)
	fmt.Fprintf(&b, "Action:       %s\n", a.Action)
	fmt.Fprintf(&b, "Confidence:   %.2f\n", a.Confidence)
	fmt.Fprintf(&b, "Phishing:     %t\n", a.IsPhishing)
	fmt.Fprintf(&b, "Spam:         %t\n", a.IsSpam)
	fmt.Fprintf(&b, "Malware:      %t\n", a.IsMalware)
	fmt.Fprintf(&b, "Engine:       %s\n", a.EngineUsed)

	if len(a.Indicators) > 0 {
		b.WriteString("Indicators:\n")
		for _, indicator := range a.Indicators {
			fmt.Fprintf(&b, "  - %s\n", indicator)
		}
	}

	if a.ML != nil {
		fmt.Fprintf(&b, "ML verdict:   %s (p=%.3f, model=%s)\n",
			a.ML.Label, a.ML.Probability, a.ML.ModelUsed)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
