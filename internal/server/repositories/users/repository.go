// Package users declares the credential store: user accounts keyed by id and
// unique email. Soft-deleted rows are invisible to every read.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

type Repository interface {
	// Create inserts user, assigning a fresh ID when it is empty. A taken
	// email is common.ErrorBadRequest.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// ExistsByEmail also counts soft-deleted rows, since they still hold the address.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateName, SetPasswordHash and MarkVerified each write one column of a
	// live user and report common.ErrorNotFound otherwise.
	UpdateName(ctx context.Context, id, name string, now time.Time) error
	SetPasswordHash(ctx context.Context, id, hash string, now time.Time) error
	MarkVerified(ctx context.Context, id string, now time.Time) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}
