package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/dbx"
	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/auth"
	"github.com/dmitrijs2005/projectmanager/internal/server/config"
	"github.com/dmitrijs2005/projectmanager/internal/server/ephemeral"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService turns credentials into tokens and manages the refresh token
// ledger and password resets.
type AuthService struct {
	Deps
	codec                *auth.TokenCodec
	hasher               auth.PasswordHasher
	tokens               ephemeral.Store
	notifier             Notifier
	refreshTokenValidity time.Duration
	now                  func() time.Time
	logger               logging.Logger
}

func NewAuthService(d Deps, codec *auth.TokenCodec, hasher auth.PasswordHasher, tokens ephemeral.Store,
	notifier Notifier, cfg *config.Config) *AuthService {
	return &AuthService{
		Deps:                 d,
		codec:                codec,
		hasher:               hasher,
		tokens:               tokens,
		notifier:             notifier,
		refreshTokenValidity: cfg.RefreshTokenValidityDuration,
		now:                  d.clockFunc(),
		logger:               d.moduleLogger("auth"),
	}
}

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)

// Login checks the credentials of a verified user and issues a token pair.
// Unknown users, unverified users and wrong passwords are all Unauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.Repos.Users(s.DB).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", common.ErrorUnauthorized)
	}
	if !s.hasher.Matches(password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	pair, err := s.issuePair(ctx, s.DB, user, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// Refresh redeems a refresh token: the presented row is revoked and its
// successor inserted in one transaction. Of two concurrent calls with the
// same token exactly one succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	now := s.now()

	var pair *TokenPair
	err := dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.Repos.RefreshTokens(tx).RevokeLive(ctx, refreshToken, now)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: refresh token is invalid, revoked or expired", common.ErrorUnauthorized)
			}
			return fmt.Errorf("revoke refresh token: %w", err)
		}

		user, err := s.Repos.Users(tx).FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: user no longer exists", common.ErrorUnauthorized)
			}
			return fmt.Errorf("find user: %w", err)
		}

		pair, err = s.issuePair(ctx, tx, user, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "refresh token rotated")
	return pair, nil
}

// Logout revokes the refresh token. Revoking an already revoked token is
// harmless; a token that was never issued is NotFound.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.Repos.RefreshTokens(s.DB).Revoke(ctx, refreshToken); err != nil {
		return notFoundAs(err, "refresh token not found", "revoke refresh token")
	}
	s.logger.Info(ctx, "refresh token revoked")
	return nil
}

// RequestPasswordReset stores a reset token for the user and emails a link.
// A delivery failure is reported after the token is stored.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, baseURL string) error {
	if _, err := s.Repos.Users(s.DB).FindByEmail(ctx, email); err != nil {
		return notFoundAs(err, "user not found with email: "+email, "find user")
	}

	token, err := newEphemeralToken(ctx, s.tokens, ephemeral.PurposePasswordReset, email)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset requested", "email", email)
	return s.notifier.SendPasswordReset(ctx, email, token, baseURL)
}

// ResetPassword consumes the reset token and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.Consume(ctx, ephemeral.PurposePasswordReset, token)
	if err != nil {
		return notFoundAs(err, "invalid or expired reset token", "consume reset token")
	}

	users := s.Repos.Users(s.DB)
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return notFoundAs(err, "user not found with email: "+email, "find user")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := users.SetPasswordHash(ctx, user.ID, hash, s.now()); err != nil {
		return notFoundAs(err, "user not found", "update user")
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, db dbx.DBTX, user *models.User, now time.Time) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: issue access token", common.ErrorInternal)
	}
	refresh, err := s.codec.IssueRefresh()
	if err != nil {
		return nil, fmt.Errorf("%w: issue refresh token", common.ErrorInternal)
	}

	row := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(s.refreshTokenValidity),
		CreatedAt: now,
	}
	if err := s.Repos.RefreshTokens(db).Create(ctx, row); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
