package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, SafeWriteFile(p, []byte("a: 1\n")))
	require.NoError(t, SafeWriteFile(p, []byte("a: 2\n")))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, EnsureDir(nested))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("X=1\n"), 0o644))

	got, err := FindUp(nested, ".env")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".env"), got)

	_, err = FindUp(nested, "no-such-marker-file")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".civtab"), ExpandHome("~/.civtab"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
}
