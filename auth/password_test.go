package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestCheckPassword_NotAHash(t *testing.T) {
	t.Parallel()

	// A legacy plaintext column value must never compare equal.
	assert.False(t, CheckPassword("hunter2", "hunter2"))
}
