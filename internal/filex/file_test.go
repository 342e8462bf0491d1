package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubDir("images")
	require.NoError(t, err)

	want := filepath.Join(tmp, "images")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("images", []byte("x"), 0o660))

	_, err := EnsureSubDir("images")
	require.Error(t, err)
}

func TestSave(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	path, err := Save("images", "../../r1.img", []byte("PNG"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "images", "r1.img"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("PNG"), got)

	_, err = Save("images", "..", []byte("x"))
	require.Error(t, err)
}
