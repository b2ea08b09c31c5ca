package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedList(t *testing.T) {
	l := NewOrderedList[string]()
	l.Add("b_0001.txt").Add("a_0000.txt").Add("b_0000.txt").Add("a_0000.txt")
	require.Equal(t, []string{"a_0000.txt", "a_0000.txt", "b_0000.txt", "b_0001.txt"}, l.Items())
	require.Equal(t, 4, l.Len())

	items := l.Items()
	items[0] = "mutated"
	require.Equal(t, "a_0000.txt", l.Items()[0])
}

func TestHash(t *testing.T) {
	require.Equal(t, "5d41402abc4b2a76b9719d911017c592", HashBytes([]byte("hello")))

	h, err := HashReader(strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, HashBytes([]byte("hello")), h)

	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	h, err = HashFile(path)
	require.NoError(t, err)
	require.Equal(t, HashBytes([]byte("hello")), h)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestContains(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{dir: "/data", path: "/data/input", want: true},
		{dir: "/data", path: "/data/./", want: true},
		{dir: "/", path: "/data", want: true},
		{dir: "/data/", path: "/data/a/b", want: true},
		{dir: "/data/input", path: "/data", want: false},
		{dir: "/data", path: "/database", want: false},
		{dir: "/data", path: "/data2/..x", want: false},
		{dir: "/data", path: "/data/../other", want: false},
	}
	for _, tt := range tests {
		got, err := Contains(tt.dir, tt.path)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "%s contains %s", tt.dir, tt.path)
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	got, err := Contains(".", filepath.Join(wd, "sub"))
	require.NoError(t, err)
	require.True(t, got)
}

func TestFreeSpace(t *testing.T) {
	free, err := FreeSpace(t.TempDir())
	require.NoError(t, err)
	require.NotZero(t, free)

	_, err = FreeSpace(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.lock")
	lock, err := LockFile(path)
	require.NoError(t, err)

	_, err = LockFile(path)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, lock.Unlock())
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	lock, err = LockFile(path)
	require.NoError(t, err)
	require.NoError(t, lock.Unlock())
}
