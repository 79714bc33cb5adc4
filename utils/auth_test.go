package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/sharedrop/config"
)

func setTestSecret(t *testing.T) {
	t.Helper()
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("JWT_SECRET", "unit-test-secret")
}

func TestTokenRoundTrip(t *testing.T) {
	setTestSecret(t)

	token, err := GenerateToken(42, "tester", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "tester", claims.Username)
}

func TestParseToken_Expired(t *testing.T) {
	setTestSecret(t)

	token, err := GenerateToken(42, "tester", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	setTestSecret(t)

	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
