package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", digest)

	assert.True(t, h.Matches("password1", digest))
	assert.False(t, h.Matches("password2", digest))
	assert.False(t, h.Matches("password1", "not-a-bcrypt-digest"))
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
}
