// Package common contains shared constants and sentinel errors used across
// projectmanager components.
package common

// AuthorizationHeaderName carries the bearer access token on inbound HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// EphemeralTokenLength is the length of verification and password-reset tokens.
const EphemeralTokenLength = 32

// RefreshTokenBytes is the amount of entropy in an opaque refresh token.
const RefreshTokenBytes = 32
