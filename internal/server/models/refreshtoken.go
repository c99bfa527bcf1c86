package models

import "time"

// RefreshToken is one row of the refresh token ledger. Rows are revoked,
// never removed.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Revoked   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Live reports whether the token may still be redeemed at instant now.
func (t *RefreshToken) Live(now time.Time) bool {
	return !t.Revoked && !t.ExpiresAt.Before(now)
}
