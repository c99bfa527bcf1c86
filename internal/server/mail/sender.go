// Package mail delivers transactional emails: address verification, password
// reset and task assignment notices.
package mail

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/projectmanager/internal/logging"
)

// Sender hands one HTML message to a transport.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Provider names accepted in configuration.
const (
	ProviderLog     = "log"
	ProviderSMTP    = "smtp"
	ProviderMailgun = "mailgun"
)

// Settings selects and configures a Sender.
type Settings struct {
	Provider string
	From     string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	MailgunDomain string
	MailgunAPIKey string
}

// NewSender builds the Sender named by s.Provider.
func NewSender(s Settings, logger logging.Logger) (Sender, error) {
	switch s.Provider {
	case "", ProviderLog:
		return NewLogSender(logger), nil
	case ProviderSMTP:
		if s.SMTPHost == "" || s.SMTPPort == "" || s.From == "" {
			return nil, fmt.Errorf("invalid smtp configuration")
		}
		return NewSMTPSender(s.SMTPHost, s.SMTPPort, s.SMTPUsername, s.SMTPPassword, s.From), nil
	case ProviderMailgun:
		if s.MailgunDomain == "" || s.MailgunAPIKey == "" || s.From == "" {
			return nil, fmt.Errorf("invalid mailgun configuration")
		}
		return NewMailgunSender(s.MailgunDomain, s.MailgunAPIKey, s.From), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", s.Provider)
	}
}

// LogSender writes messages to the log instead of sending them. Development only.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "mail")}
}

func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.logger.Info(ctx, "email not sent, log provider", "to", to, "subject", subject, "body", htmlBody)
	return nil
}
