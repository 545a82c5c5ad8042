package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// Importer accepts inbound messages for triage
type Importer interface {
	Import(ctx context.Context, msgs []core.Message) ([]*core.Record, error)
}

// SMTPIntake accepts support mail over SMTP and imports each message
type SMTPIntake struct {
	importer Importer
	logger   *zap.Logger
	cfg      config.SMTPIntakeConfig
	server   *smtp.Server
	done     chan struct{}
}

// NewSMTPIntake creates a new SMTP intake
func NewSMTPIntake(importer Importer, logger *zap.Logger, cfg config.SMTPIntakeConfig) *SMTPIntake {
	return &SMTPIntake{
		importer: importer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Name identifies the intake in logs
func (i *SMTPIntake) Name() string {
	return "smtp"
}

// Start binds the listen address and serves SMTP in the background. A bind
// failure is returned to the caller.
func (i *SMTPIntake) Start() error {
	l, err := net.Listen("tcp", i.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", i.cfg.ListenAddress, err)
	}

	i.server = smtp.NewServer(&smtpBackend{intake: i})
	i.server.Addr = i.cfg.ListenAddress
	i.server.Domain = i.cfg.Domain
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = i.cfg.MaxMessageBytes
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true
	i.done = make(chan struct{})

	i.logger.Info("SMTP intake starting", zap.String("address", l.Addr().String()))

	go func() {
		defer close(i.done)
		if err := i.server.Serve(l); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			i.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (i *SMTPIntake) Stop() error {
	if i.server == nil {
		return nil
	}
	err := i.server.Close()
	<-i.done
	return err
}

// deliver parses and imports one message
func (i *SMTPIntake) deliver(envelopeFrom string, r io.Reader) error {
	msg, err := ParseMessage(r, envelopeFrom)
	if err != nil {
		i.logger.Warn("Rejecting unparseable message", zap.String("sender", envelopeFrom), zap.Error(err))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Message could not be parsed",
		}
	}

	records, err := i.importer.Import(context.Background(), []core.Message{*msg})
	if err != nil {
		i.logger.Error("Failed to import message", zap.String("sender", msg.Sender), zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary failure, try again later",
		}
	}

	i.logger.Info("Received message",
		zap.String("sender", msg.Sender),
		zap.String("subject", msg.Subject),
		zap.Bool("stored", len(records) > 0))
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *SMTPIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake *SMTPIntake
	sender string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt accepts any recipient
func (s *smtpSession) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

// Data triages the delivered message
func (s *smtpSession) Data(r io.Reader) error {
	return s.intake.deliver(s.sender, r)
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
