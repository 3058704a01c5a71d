package cryptox

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCode_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		code, err := GenerateCode(size)
		require.Error(t, err)
		require.Empty(t, code)
	}
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{32}$`)

	seen := make(map[string]bool, 100)
	for range 100 {
		code, err := GenerateCode(TokenSize128)
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
		require.NotContains(t, seen, code, "duplicate code generated")
		seen[code] = true
	}
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("test-token-1")
	fp1b := FingerprintToken("test-token-1")
	fp2 := FingerprintToken("test-token-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2)
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	created, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, created)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, created, loaded, "pepper should be stable across loads")
}

func TestLoadOrCreatePepper_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

	_, err := LoadOrCreatePepper(path)
	require.Error(t, err)
}
