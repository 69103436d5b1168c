package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	mail "github.com/go-mail/mail/v2"
	"go.uber.org/zap"

	"petmemorial/internal/config"
	"petmemorial/internal/email"
	"petmemorial/internal/pkg/logger"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}

// dialer is the subset of *mail.Dialer used by SMTPSender.
type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPSender sends mail over SMTP with mandatory STARTTLS.
type SMTPSender struct {
	from   string
	dialer dialer
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	return &SMTPSender{from: cfg.From, dialer: d}
}

func (s *SMTPSender) Send(ctx context.Context, msg email.Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("email recipient is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := BuildMessage(s.from, msg)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// BuildMessage converts a rendered message into a multipart text+html mail.
func BuildMessage(from string, msg email.Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return m
}

// LogSender only logs outgoing mail. Used when SMTP is not configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(l *zap.Logger) *LogSender {
	return &LogSender{log: logger.OrNop(l)}
}

func (s *LogSender) Send(_ context.Context, msg email.Message) error {
	s.log.Info("email not sent: smtp disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// New picks the SMTP sender when configured, otherwise the logging sender.
func New(cfg config.SMTPConfig, l *zap.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return NewLogSender(l)
}
