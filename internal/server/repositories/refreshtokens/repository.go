// Package refreshtokens declares the refresh token ledger: one row per issued
// refresh token, revoked on use and never removed.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

// Repository defines operations for issuing and revoking refresh tokens.
type Repository interface {
	// Create stores a new ledger row, assigning a fresh ID when it is empty.
	Create(ctx context.Context, token *models.RefreshToken) error

	// RevokeLive revokes the token only if it is unrevoked and not expired at
	// now, returning the owning user id. Exactly one of any number of
	// concurrent callers wins; the rest get common.ErrorNotFound.
	RevokeLive(ctx context.Context, token string, now time.Time) (string, error)

	// Revoke marks the token revoked regardless of its state. It returns
	// common.ErrorNotFound only when no row carries the token.
	Revoke(ctx context.Context, token string) error
}
