package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestGenOTPCode_SixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestCodesEqual(t *testing.T) {
	assert.True(t, CodesEqual("012345", "012345"))
	assert.False(t, CodesEqual("012345", "012346"))
	assert.False(t, CodesEqual("012345", ""))
}

func TestGenTokenAndHash(t *testing.T) {
	a, err := GenToken(32)
	require.NoError(t, err)
	b, err := GenToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, HashToken(a), HashToken(b))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, CompareHashAndPassword(hash, "password123"))
	assert.False(t, CompareHashAndPassword(hash, "password124"))
	assert.False(t, CompareHashAndPassword("", "password123"))
}
