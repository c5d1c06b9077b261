package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 30*24*time.Hour, 7*24*time.Hour)

	token, issued, err := m.Generate("user-123", "student")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "student", claims.Role)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.Expiry(), time.Minute)
}

func TestParse_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, time.Hour)
	token, _, err := m.Generate("user-123", "student")
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrTokenInvalid))
}

func TestParse_WrongSecret(t *testing.T) {
	a := NewJWTManager("secret-a", time.Hour, time.Minute)
	b := NewJWTManager("secret-b", time.Hour, time.Minute)
	token, _, err := a.Generate("user-123", "educator")
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.True(t, errors.Is(err, ErrTokenInvalid))
}

func TestParse_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, time.Minute)

	for _, tok := range []string{"", "invalid-token", "a.b.c"} {
		_, err := m.Parse(tok)
		assert.True(t, errors.Is(err, ErrTokenInvalid), tok)
	}
}

func TestNeedsRefresh(t *testing.T) {
	m := NewJWTManager("test-secret", 30*24*time.Hour, 7*24*time.Hour)
	_, fresh, err := m.Generate("u", "student")
	require.NoError(t, err)
	assert.False(t, m.NeedsRefresh(fresh, time.Now()))

	short := NewJWTManager("test-secret", 48*time.Hour, 7*24*time.Hour)
	_, soon, err := short.Generate("u", "student")
	require.NoError(t, err)
	assert.True(t, short.NeedsRefresh(soon, time.Now()))
}
