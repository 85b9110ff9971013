package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.hcl", "a.hcl", "nested/c.hcl", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	// --- Act ---
	files, err := FindFilesByExtension(dir, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "b.hcl"),
		filepath.Join(dir, "nested", "c.hcl"),
	}, files)
}

func TestRequireFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(existing, []byte("a,b\n"), 0o600))

	t.Run("existing file", func(t *testing.T) {
		assert.NoError(t, RequireFile(existing))
	})

	t.Run("missing file", func(t *testing.T) {
		err := RequireFile(filepath.Join(dir, "missing.csv"))
		require.ErrorIs(t, err, ErrFileNotFound)
		assert.Contains(t, err.Error(), "missing.csv")
	})

	t.Run("directory", func(t *testing.T) {
		err := RequireFile(dir)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrFileNotFound)
	})
}
