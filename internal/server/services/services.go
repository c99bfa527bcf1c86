// Package services contains the server's business logic. Every operation
// takes the calling Principal explicitly; authorization is decided here, not
// in the transport.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/ephemeral"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/repomanager"
)

// Notifier sends the application's emails. Failures wrap common.ErrDeliveryFailure.
type Notifier interface {
	SendVerification(ctx context.Context, to, token, baseURL string) error
	SendPasswordReset(ctx context.Context, to, token, baseURL string) error
	SendTaskAssignment(ctx context.Context, to, taskTitle, projectName string) error
}

// Deps are the collaborators shared by every service.
type Deps struct {
	DB     *sql.DB
	Repos  repomanager.RepositoryManager
	Logger logging.Logger
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (d Deps) clockFunc() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func (d Deps) moduleLogger(module string) logging.Logger {
	if d.Logger == nil {
		return logging.Nop{}
	}
	return d.Logger.With("module", module)
}

// notFoundAs passes through common.ErrorNotFound with a readable message and
// wraps anything else as an internal failure of op.
func notFoundAs(err error, what, op string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, what)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// newEphemeralToken stores a fresh 32-character token for email.
func newEphemeralToken(ctx context.Context, store ephemeral.Store, purpose ephemeral.Purpose, email string) (string, error) {
	token, err := common.MakeRandAlnumString(common.EphemeralTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := store.Put(ctx, purpose, token, email); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}
