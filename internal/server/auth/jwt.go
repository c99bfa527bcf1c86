// Package auth implements the stateless token codec (signed access tokens and
// opaque refresh strings) and the password hashing primitive.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the principal carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"uid"`
	Role   models.Role `json:"role"`
}

// TokenCodec signs and verifies access tokens with HS256 and mints refresh
// strings. It never touches storage.
type TokenCodec struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

// NewTokenCodec returns a codec signing with secretKey; access tokens expire
// validity after issuance.
func NewTokenCodec(secretKey []byte, validity time.Duration) *TokenCodec {
	return &TokenCodec{secretKey: secretKey, validity: validity, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// IssueAccess produces a signed token embedding userID, role and an absolute expiry.
func (c *TokenCodec) IssueAccess(userID string, role models.Role) (string, error) {
	issuedAt := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.validity)),
		},
		UserID: userID,
		Role:   role,
	})

	tokenString, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return tokenString, nil
}

// IssueRefresh returns a high-entropy opaque string. It carries no claims;
// all refresh state lives in the ledger.
func (c *TokenCodec) IssueRefresh() (string, error) {
	return common.MakeRandHexString(common.RefreshTokenBytes)
}

// VerifyAccess checks signature and expiry and returns the embedded principal.
// Every failure is reported as common.ErrorUnauthorized so callers cannot tell
// expired tokens from forged ones.
func (c *TokenCodec) VerifyAccess(tokenString string) (models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Principal{}, errors.Join(common.ErrorUnauthorized, common.ErrInvalidToken)
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return models.Principal{}, errors.Join(common.ErrorUnauthorized, common.ErrInvalidToken)
	}

	return models.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
