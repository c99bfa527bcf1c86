package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/auth"
	"github.com/dmitrijs2005/projectmanager/internal/server/authz"
	"github.com/dmitrijs2005/projectmanager/internal/server/ephemeral"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

// UserUpdate carries the mutable profile fields. Nil means unchanged.
type UserUpdate struct {
	Name *string
}

// UserService manages accounts: registration, email verification and the
// profile operations guarded by the self-or-admin rule.
type UserService struct {
	Deps
	hasher   auth.PasswordHasher
	tokens   ephemeral.Store
	notifier Notifier
	now      func() time.Time
	logger   logging.Logger
}

func NewUserService(d Deps, hasher auth.PasswordHasher, tokens ephemeral.Store, notifier Notifier) *UserService {
	return &UserService{
		Deps:     d,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		now:      d.clockFunc(),
		logger:   d.moduleLogger("users"),
	}
}

// Register creates an unverified USER and emails a verification link. When
// the email cannot be delivered the user still exists and the returned error
// wraps common.ErrDeliveryFailure.
func (s *UserService) Register(ctx context.Context, name, email, password, baseURL string) (*models.User, error) {
	users := s.Repos.Users(s.DB)

	exists, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already exists", common.ErrorBadRequest)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		Email:        email,
		Name:         name,
		Role:         models.RoleUser,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		// a concurrent registration took the email after the check
		if errors.Is(err, common.ErrorBadRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info(ctx, "user created", "user_id", user.ID)

	token, err := newEphemeralToken(ctx, s.tokens, ephemeral.PurposeVerification, email)
	if err != nil {
		return user, err
	}
	return user, s.notifier.SendVerification(ctx, email, token, baseURL)
}

// VerifyEmail consumes a verification token and marks the address verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	email, err := s.tokens.Consume(ctx, ephemeral.PurposeVerification, token)
	if err != nil {
		return nil, notFoundAs(err, "invalid or expired verification token", "consume verification token")
	}

	users := s.Repos.Users(s.DB)
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, "user not found with email: "+email, "find user")
	}

	now := s.now()
	if err := users.MarkVerified(ctx, user.ID, now); err != nil {
		return nil, notFoundAs(err, "user not found", "update user")
	}
	user.EmailVerified = true
	user.UpdatedAt = now

	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, p models.Principal, id string) (*models.User, error) {
	if err := authz.RequireUserAccess(p, id, "view this user"); err != nil {
		return nil, err
	}

	user, err := s.Repos.Users(s.DB).FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user not found with ID: "+id, "find user")
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, p models.Principal, id string, upd UserUpdate) (*models.User, error) {
	if err := authz.RequireUserAccess(p, id, "update this user"); err != nil {
		return nil, err
	}

	users := s.Repos.Users(s.DB)
	if upd.Name != nil {
		if err := users.UpdateName(ctx, id, *upd.Name, s.now()); err != nil {
			return nil, notFoundAs(err, "user not found with ID: "+id, "update user")
		}
		s.logger.Info(ctx, "user updated", "user_id", id)
	}

	user, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user not found with ID: "+id, "find user")
	}
	return user, nil
}

// DeleteUser soft-deletes the account. Deleting it again is NotFound.
func (s *UserService) DeleteUser(ctx context.Context, p models.Principal, id string) error {
	if err := authz.RequireUserAccess(p, id, "delete this user"); err != nil {
		return err
	}

	if err := s.Repos.Users(s.DB).SoftDelete(ctx, id, s.now()); err != nil {
		return notFoundAs(err, "user not found with ID: "+id, "delete user")
	}

	s.logger.Info(ctx, "user logically deleted", "user_id", id)
	return nil
}

// ListUsers is reserved to admins.
func (s *UserService) ListUsers(ctx context.Context, p models.Principal, filter models.UserFilter) ([]*models.User, error) {
	if err := authz.RequireAdmin(p, "view all users"); err != nil {
		return nil, err
	}

	list, err := s.Repos.Users(s.DB).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

// EnsureAdmin creates a verified ADMIN when no user has ever been stored.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	users := s.Repos.Users(s.DB)

	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}

	now := s.now()
	admin := &models.User{
		Email:         email,
		Name:          name,
		Role:          models.RoleAdmin,
		PasswordHash:  hash,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info(ctx, "admin user created", "user_id", admin.ID, "email", email)
	return true, nil
}
