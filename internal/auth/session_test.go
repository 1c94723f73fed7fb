// internal/auth/session_test.go
package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFromPathSignsVerifiableTokens(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt_ed25519")
	pubPath := filepath.Join(dir, "jwt_ed25519.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))

	require.NoError(t, InitFromPath(privPath, pubPath))

	token, err := CreateJWT("user-1", true)
	require.NoError(t, err)

	sub, isAdmin, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
	assert.True(t, isAdmin)
}

func TestInitFromPathMissingFiles(t *testing.T) {
	err := InitFromPath(filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "absent.pub"))
	assert.Error(t, err)
}
