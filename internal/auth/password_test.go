// internal/auth/password_test.go
package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHashRoundTrip(t *testing.T) {
	hash, err := CreateHash("hunter2", Params)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"), "unexpected encoding: %s", hash)

	match, err := ComparePasswordAndHash("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = ComparePasswordAndHash("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestCreateHashSaltsDiffer(t *testing.T) {
	a, err := CreateHash("same-password", Params)
	require.NoError(t, err)
	b, err := CreateHash("same-password", Params)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "two hashes of one password must not share a salt")
}

func TestComparePasswordAndHashMalformed(t *testing.T) {
	_, err := ComparePasswordAndHash("x", "not-an-encoded-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
