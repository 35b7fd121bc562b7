package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindFixtureFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "tests", "DecodeTest.elm"))
	touch(t, filepath.Join(dir, "tests", "sub", "OtherTest.elm"))
	touch(t, filepath.Join(dir, "tests", "README.md"))

	t.Run("plain path", func(t *testing.T) {
		paths, err := FindFixtureFiles(dir, []string{"tests/DecodeTest.elm"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "tests", "DecodeTest.elm")}, paths)
	})

	t.Run("glob expansion", func(t *testing.T) {
		paths, err := FindFixtureFiles(dir, []string{"tests/**/*.elm"})
		require.NoError(t, err)
		assert.Len(t, paths, 2)
	})

	t.Run("duplicates removed", func(t *testing.T) {
		paths, err := FindFixtureFiles(dir, []string{"tests/DecodeTest.elm", "tests/**/*.elm"})
		require.NoError(t, err)
		assert.Len(t, paths, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FindFixtureFiles(dir, []string{"tests/Missing.elm"})
		require.Error(t, err)
	})

	t.Run("directory rejected", func(t *testing.T) {
		_, err := FindFixtureFiles(dir, []string{"tests"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})

	t.Run("glob with no matches", func(t *testing.T) {
		_, err := FindFixtureFiles(dir, []string{"nowhere/**/*.elm"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no fixture files found")
	})
}
