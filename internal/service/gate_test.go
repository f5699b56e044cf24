package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/room-booking/internal/utils"
)

func TestSecretGate_Authorize(t *testing.T) {
	g := NewSecretGate("admin123", "")

	assert.True(t, g.Authorize("abc", "abc"))
	assert.True(t, g.Authorize("abc", "admin123"))
	assert.False(t, g.Authorize("abc", "wrong"))
	assert.False(t, g.Authorize("abc", ""))
	assert.False(t, g.Authorize("", ""))
	assert.True(t, g.IsAdmin("admin123"))
	assert.False(t, g.IsAdmin("abc"))
}

func TestSecretGate_NoAdminToken(t *testing.T) {
	g := NewSecretGate("", "")
	assert.False(t, g.IsAdmin(""))
	assert.False(t, g.Authorize("abc", ""))
	assert.True(t, g.Authorize("abc", "abc"))
}

func TestSecretGate_BcryptHash(t *testing.T) {
	hash, err := utils.HashToken("s3cret-admin", bcrypt.MinCost)
	require.NoError(t, err)

	g := NewSecretGate("admin123", hash)
	assert.True(t, g.IsAdmin("s3cret-admin"))
	assert.False(t, g.IsAdmin("admin123"), "hash takes precedence over plaintext")
	assert.True(t, g.Authorize("abc", "s3cret-admin"))
}
