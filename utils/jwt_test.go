package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quillpress/quillpress/config"
)

func TestGenerateAndParseToken(t *testing.T) {
	config.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(42, "alice", "AUTHOR", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "AUTHOR", claims.Role)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	config.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	config.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(1, "bob", "USER", -time.Minute)
	assert.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}
