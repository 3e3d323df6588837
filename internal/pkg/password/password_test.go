package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, Verify("secret123", hash))
	assert.False(t, Verify("wrong-password", hash))
	assert.False(t, Verify("secret123", ""))
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("token-a")
	h2 := HashToken("token-a")
	h3 := HashToken("token-b")

	// Deterministic, unlike bcrypt, so it can be used as a lookup key
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // hex-encoded SHA-256
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("abcdef"))
	assert.True(t, ValidatePassword("a-much-longer-password"))
	assert.False(t, ValidatePassword("abcde"))
	assert.False(t, ValidatePassword(""))
}
