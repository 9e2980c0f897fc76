package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/metrics"
	"go.uber.org/zap"
)

// SMTPFilter accepts mail on a local SMTP port, scores each message and
// stamps the verdict into message headers before handing it back to the MTA.
// A quarantine verdict is rejected outright when block_quarantined is set.
type SMTPFilter struct {
	service *core.ThreatService
	server  *gosmtp.Server
	cfg     config.SMTPConfig
	logger  *zap.Logger
}

// NewSMTPFilter creates a new SMTP filter front end.
func NewSMTPFilter(service *core.ThreatService, cfg config.SMTPConfig, logger *zap.Logger) *SMTPFilter {
	filter := &SMTPFilter{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}

	server := gosmtp.NewServer(&smtpBackend{filter: filter})
	server.Addr = cfg.ListenAddress
	server.Domain = "localhost"
	server.ReadTimeout = 60 * time.Second
	server.WriteTimeout = 60 * time.Second
	server.MaxMessageBytes = 25 * 1024 * 1024
	server.MaxRecipients = 100
	server.AllowInsecureAuth = true

	filter.server = server
	return filter
}

// ProcessEmail assesses a single normalized email.
func (f *SMTPFilter) ProcessEmail(ctx context.Context, email *core.NormalizedEmail) (*core.ThreatAssessment, error) {
	return f.service.Assess(ctx, email)
}

// Start begins listening for SMTP connections. It blocks until the server
// shuts down.
func (f *SMTPFilter) Start() error {
	f.logger.Info("Starting SMTP filter", zap.String("address", f.cfg.ListenAddress))
	return f.server.ListenAndServe()
}

// Stop shuts down the SMTP server.
func (f *SMTPFilter) Stop() error {
	f.logger.Info("Stopping SMTP filter")
	return f.server.Close()
}

// smtpBackend implements the go-smtp Backend interface.
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session.
func (b *smtpBackend) NewSession(c *gosmtp.Conn) (gosmtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface for one message.
type smtpSession struct {
	filter *SMTPFilter
	from   string
	to     []string
}

// Mail handles the MAIL FROM command.
func (s *smtpSession) Mail(from string, opts *gosmtp.MailOptions) error {
	s.from = from
	return nil
}

// Rcpt handles the RCPT TO command.
func (s *smtpSession) Rcpt(to string, opts *gosmtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

// Data receives the message body, scores it and either rejects the message
// or stamps the verdict headers and relays it onward.
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read message data: %w", err)
	}

	email, err := ParseMessage(bytes.NewReader(raw))
	if err != nil {
		s.filter.logger.Error("Failed to parse message, passing through unscored",
			zap.Error(err), zap.String("from", s.from))
		metrics.ParseFailures.Inc()
		return s.relay(raw)
	}

	assessment, err := s.filter.ProcessEmail(context.Background(), email)
	if err != nil {
		s.filter.logger.Error("Failed to assess message, passing through unscored",
			zap.Error(err), zap.String("from", s.from))
		return s.relay(raw)
	}

	if assessment.Action == core.ActionQuarantine && s.filter.cfg.BlockQuarantined {
		s.filter.logger.Info("Rejecting quarantined message",
			zap.String("from", s.from),
			zap.Float64("threat_score", assessment.Score))
		return &gosmtp.SMTPError{
			Code:         550,
			EnhancedCode: gosmtp.EnhancedCode{5, 7, 1},
			Message:      "Message rejected due to threat policy",
		}
	}

	return s.relay(s.stampHeaders(raw, assessment))
}

// stampHeaders prepends the verdict headers to the raw message.
func (s *smtpSession) stampHeaders(raw []byte, assessment *core.ThreatAssessment) []byte {
	cfg := s.filter.cfg

	status := "Clean"
	if assessment.IsPhishing || assessment.IsSpam || assessment.IsMalware {
		status = "Suspicious"
	}

	var header bytes.Buffer
	fmt.Fprintf(&header, "%s: %s\r\n", cfg.StatusHeader, status)
	fmt.Fprintf(&header, "%s: %s\r\n", cfg.ScoreHeader, strconv.FormatFloat(assessment.Score, 'f', 3, 64))
	fmt.Fprintf(&header, "%s: %s\r\n", cfg.LevelHeader, string(assessment.Level))
	if len(assessment.Indicators) > 0 {
		fmt.Fprintf(&header, "%s: %s\r\n", cfg.IndicatorsHeader, strings.Join(assessment.Indicators, ", "))
	}

	return append(header.Bytes(), raw...)
}

// relay re-injects the message into the downstream MTA when relaying is
// enabled; otherwise the message is accepted and dropped, which is the mode
// used when another milter picks results up from the store.
func (s *smtpSession) relay(raw []byte) error {
	if !s.filter.cfg.RelayEnabled {
		return nil
	}

	addr := net.JoinHostPort(s.filter.cfg.RelayAddress, strconv.Itoa(s.filter.cfg.RelayPort))
	if err := smtp.SendMail(addr, nil, s.from, s.to, raw); err != nil {
		s.filter.logger.Error("Failed to relay message",
			zap.Error(err), zap.String("relay_address", addr))
		return fmt.Errorf("failed to relay message: %w", err)
	}
	return nil
}

// Reset clears the per-message state.
func (s *smtpSession) Reset() {
	s.from = ""
	s.to = nil
}

// Logout handles the end of the session.
func (s *smtpSession) Logout() error {
	return nil
}
