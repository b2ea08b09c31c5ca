// Package output persists the reduced pairs and the completion marker.
//
// Commit protocol: the marker is created only after the part file has been
// fully written, synced and renamed into place. Consumers must check for
// the marker before reading the part file.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"wordcount/mapreduce/types"
	"wordcount/utils"
)

const (
	PartFile   = "part-00000"
	MarkerFile = "_SUCCESS"
)

// tempFile is the subset of *os.File the writer needs.
type tempFile interface {
	io.Writer
	Name() string
	Sync() error
	Close() error
}

// Result describes a committed output directory.
type Result struct {
	PartPath   string
	MarkerPath string
	Lines      int
	Hash       string
}

// Writer writes the output directory of a job.
type Writer struct {
	createTemp func(dir, pattern string) (tempFile, error)
}

func NewWriter() *Writer {
	return &Writer{
		createTemp: func(dir, pattern string) (tempFile, error) {
			return os.CreateTemp(dir, pattern)
		},
	}
}

// Commit writes pairs to dir/part-00000, one "word\tcount" line each, then
// creates the empty dir/_SUCCESS. Artifacts of an earlier run are removed
// first; other entries of dir are left alone.
func (w *Writer) Commit(dir string, pairs []types.Pair) (Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, err
	}
	if err := Clear(dir); err != nil {
		return Result{}, err
	}
	partPath := filepath.Join(dir, PartFile)
	if err := w.writePart(dir, partPath, pairs); err != nil {
		return Result{}, err
	}
	hash, err := utils.HashFile(partPath)
	if err != nil {
		return Result{}, err
	}
	markerPath := filepath.Join(dir, MarkerFile)
	if err := createMarker(markerPath); err != nil {
		return Result{}, err
	}
	return Result{
		PartPath:   partPath,
		MarkerPath: markerPath,
		Lines:      len(pairs),
		Hash:       hash,
	}, nil
}

// Invalidate removes the marker of a previous run, if any, so that a run
// failing before Commit does not leave an old success signal behind.
func Invalidate(dir string) error {
	err := os.Remove(filepath.Join(dir, MarkerFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Owned reports whether name is an artifact written by Commit: the marker,
// a part file or a leftover part temp file.
func Owned(name string) bool {
	return name == MarkerFile ||
		strings.HasPrefix(name, "part-") ||
		strings.HasPrefix(name, "."+PartFile+"-")
}

// Clear removes the marker of a previous run first, then the other
// artifacts of that run. Entries not written by Commit are kept.
func Clear(dir string) error {
	if err := Invalidate(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !Owned(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// writePart writes into a temp file and renames it to partPath, so a failed
// write never leaves a truncated part file behind.
func (w *Writer) writePart(dir string, partPath string, pairs []types.Pair) (err error) {
	f, err := w.createTemp(dir, "."+PartFile+"-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(f)
	line := make([]byte, 0, 64)
	for _, p := range pairs {
		line = append(line[:0], p.Word...)
		line = append(line, '\t')
		line = strconv.AppendInt(line, p.Count, 10)
		line = append(line, '\n')
		if _, err = buf.Write(line); err != nil {
			return fmt.Errorf("failed to write %s: %w", partPath, err)
		}
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", partPath, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", partPath, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", partPath, err)
	}
	if err = os.Rename(tmpName, partPath); err != nil {
		return err
	}
	return nil
}

func createMarker(markerPath string) error {
	f, err := os.OpenFile(markerPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(markerPath)
		return err
	}
	return f.Close()
}

// Completed reports whether dir holds a committed output.
func Completed(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && fi.Mode().IsRegular()
}
