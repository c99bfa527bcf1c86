// Package ephemeral keeps single-use, short-lived tokens that prove control of
// an email address: email verification and password reset.
//
// A token is consumed at most once. Consume looks the token up and removes it
// as one atomic step, so concurrent redemptions yield exactly one success.
package ephemeral

import "context"

// Purpose namespaces tokens so a verification token can never be redeemed as
// a password-reset token and vice versa.
type Purpose string

const (
	PurposeVerification  Purpose = "verify"
	PurposePasswordReset Purpose = "reset"
)

// Store maps token → email for one purpose.
type Store interface {
	// Put records token for email. Entries expire after the store's TTL.
	Put(ctx context.Context, purpose Purpose, token, email string) error

	// Consume returns the email bound to token and deletes the entry.
	// Unknown, expired or already consumed tokens yield common.ErrorNotFound.
	Consume(ctx context.Context, purpose Purpose, token string) (string, error)
}
