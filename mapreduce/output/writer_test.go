package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wordcount/mapreduce/types"
	"wordcount/utils"
)

var scenario = []types.Pair{
	{Word: "cat", Count: 3},
	{Word: "dog", Count: 1},
	{Word: "sat", Count: 2},
	{Word: "the", Count: 2},
}

func TestCommit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	res, err := NewWriter().Commit(dir, scenario)
	require.NoError(t, err)

	want := "cat\t3\ndog\t1\nsat\t2\nthe\t2\n"
	data, err := os.ReadFile(filepath.Join(dir, PartFile))
	require.NoError(t, err)
	require.Equal(t, want, string(data))

	fi, err := os.Stat(filepath.Join(dir, MarkerFile))
	require.NoError(t, err)
	require.Zero(t, fi.Size())
	require.True(t, Completed(dir))

	require.Equal(t, Result{
		PartPath:   filepath.Join(dir, PartFile),
		MarkerPath: filepath.Join(dir, MarkerFile),
		Lines:      4,
		Hash:       utils.HashBytes([]byte(want)),
	}, res)
}

func TestCommitEmpty(t *testing.T) {
	dir := t.TempDir()
	res, err := NewWriter().Commit(dir, nil)
	require.NoError(t, err)
	require.Zero(t, res.Lines)

	fi, err := os.Stat(filepath.Join(dir, PartFile))
	require.NoError(t, err)
	require.Zero(t, fi.Size())
	require.True(t, Completed(dir))
}

func TestCommitClearsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{MarkerFile, "part-00001", "." + PartFile + "-123", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("old"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "input"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "a.txt"), []byte("a\n"), 0644))

	_, err := NewWriter().Commit(dir, scenario)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{PartFile, MarkerFile, "notes.md", "input"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "notes.md"))
	require.NoError(t, err)
	require.Equal(t, "old", string(data))
	_, err = os.Stat(filepath.Join(dir, "input", "a.txt"))
	require.NoError(t, err)
}

func TestOwned(t *testing.T) {
	for _, name := range []string{MarkerFile, PartFile, "part-00001", "." + PartFile + "-42"} {
		require.True(t, Owned(name), name)
	}
	for _, name := range []string{"notes.md", "input", "_SUCCESS.bak", ".part", "a.txt"} {
		require.False(t, Owned(name), name)
	}
}

func TestCommitDeterministic(t *testing.T) {
	a, err := NewWriter().Commit(t.TempDir(), scenario)
	require.NoError(t, err)
	b, err := NewWriter().Commit(t.TempDir(), scenario)
	require.NoError(t, err)

	dataA, err := os.ReadFile(a.PartPath)
	require.NoError(t, err)
	dataB, err := os.ReadFile(b.PartPath)
	require.NoError(t, err)
	require.Equal(t, dataA, dataB)
	require.Equal(t, a.Hash, b.Hash)
}

var errDiskFull = errors.New("disk full")

// failingFile accepts limit bytes, then fails every write.
type failingFile struct {
	*os.File
	limit int
}

func (f *failingFile) Write(p []byte) (int, error) {
	if len(p) > f.limit {
		n, _ := f.File.Write(p[:f.limit])
		f.limit = 0
		return n, errDiskFull
	}
	f.limit -= len(p)
	return f.File.Write(p)
}

func TestCommitInterruptedLeavesNoMarker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MarkerFile), nil, 0644))

	w := NewWriter()
	w.createTemp = func(dir, pattern string) (tempFile, error) {
		f, err := os.CreateTemp(dir, pattern)
		if err != nil {
			return nil, err
		}
		return &failingFile{File: f, limit: 100}, nil
	}
	pairs := make([]types.Pair, 0, 1000)
	for i := 0; i < 1000; i++ {
		pairs = append(pairs, types.Pair{Word: fmt.Sprintf("word%04d", i), Count: 1})
	}

	_, err := w.Commit(dir, pairs)
	require.ErrorIs(t, err, errDiskFull)
	require.False(t, Completed(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "no part file or temp file may remain")
}

func TestCommitUncreatableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewWriter().Commit(filepath.Join(blocker, "out"), scenario)
	require.Error(t, err)
	require.False(t, Completed(filepath.Join(blocker, "out")))
}
