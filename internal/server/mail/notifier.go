package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/logging"
)

// Notifier renders the application's emails and sends them. Every transport
// failure is logged and returned wrapped in common.ErrDeliveryFailure.
type Notifier struct {
	sender Sender
	logger logging.Logger
}

func NewNotifier(sender Sender, logger logging.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger.With("module", "notifier")}
}

func (n *Notifier) SendVerification(ctx context.Context, to, token, baseURL string) error {
	body, err := render(verificationTmpl, struct{ Link string }{tokenLink(baseURL, "/api/auth/verify", token)})
	if err != nil {
		return err
	}
	return n.deliver(ctx, to, SubjectVerification, body)
}

func (n *Notifier) SendPasswordReset(ctx context.Context, to, token, baseURL string) error {
	body, err := render(resetTmpl, struct{ Link string }{tokenLink(baseURL, "/api/auth/reset-password", token)})
	if err != nil {
		return err
	}
	return n.deliver(ctx, to, SubjectReset, body)
}

func (n *Notifier) SendTaskAssignment(ctx context.Context, to, taskTitle, projectName string) error {
	body, err := render(assignmentTmpl, struct{ Task, Project string }{taskTitle, projectName})
	if err != nil {
		return err
	}
	return n.deliver(ctx, to, SubjectAssignment, body)
}

func (n *Notifier) deliver(ctx context.Context, to, subject, body string) error {
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		n.logger.Error(ctx, "email delivery failed", "to", to, "subject", subject, "error", err)
		return errors.Join(common.ErrDeliveryFailure, fmt.Errorf("send %q: %w", subject, err))
	}
	n.logger.Info(ctx, "email sent", "to", to, "subject", subject)
	return nil
}
