// Package services contains application services for the projectmanager CLI.
// This file defines the session service: registration, login, logout and the
// email-token flows.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/projectmanager/internal/client/api"
	"github.com/dmitrijs2005/projectmanager/internal/common"
)

// Client is the part of the API client the session service needs.
type Client interface {
	Register(ctx context.Context, name, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Health(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Passwords are taken as byte slices so callers can wipe them; the service
// never keeps them.
type AuthService interface {
	Register(ctx context.Context, name, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, newPassword []byte) error
	Ping(ctx context.Context) error
	CurrentUser() string
}

type authService struct {
	client Client

	mu    sync.Mutex
	email string
}

func NewAuthService(client Client) AuthService {
	return &authService{client: client}
}

// Register creates an unverified account. When the verification email could
// not be sent the account still exists and the error says so.
func (a *authService) Register(ctx context.Context, name, email string, password []byte) error {
	if _, err := a.client.Register(ctx, name, email, string(password)); err != nil {
		if errors.Is(err, common.ErrDeliveryFailure) {
			return fmt.Errorf("account created, verification email not sent: %w", err)
		}
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	if err := a.client.Login(ctx, email, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	a.mu.Lock()
	a.email = email
	a.mu.Unlock()
	return nil
}

// Logout ends the session locally even when the server call fails.
func (a *authService) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.email = ""
	a.mu.Unlock()

	if err := a.client.Logout(ctx); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

func (a *authService) VerifyEmail(ctx context.Context, token string) error {
	return a.client.VerifyEmail(ctx, token)
}

func (a *authService) RequestPasswordReset(ctx context.Context, email string) error {
	return a.client.RequestPasswordReset(ctx, email)
}

func (a *authService) ResetPassword(ctx context.Context, token string, newPassword []byte) error {
	return a.client.ResetPassword(ctx, token, string(newPassword))
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Health(ctx)
}

// CurrentUser returns the email of the logged-in user, or "".
func (a *authService) CurrentUser() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email
}
