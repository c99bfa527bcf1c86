package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// mailgunAPI is the part of mailgun.MailgunImpl the sender needs.
type mailgunAPI interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailgunSender delivers through the Mailgun HTTP API.
type MailgunSender struct {
	mg      mailgunAPI
	from    string
	timeout time.Duration
}

func NewMailgunSender(domain, apiKey, from string) *MailgunSender {
	return &MailgunSender{
		mg:      mailgun.NewMailgun(domain, apiKey),
		from:    from,
		timeout: 30 * time.Second,
	}
}

func (s *MailgunSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	message := s.mg.NewMessage(s.from, subject, "", to)
	message.SetHtml(htmlBody)

	if _, _, err := s.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", to, err)
	}
	return nil
}
