// Package materialize fills a job input directory with n copies of a set of
// raw text files. The input directory is cleared before it is populated.
package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wordcount/mapreduce/input"
	"wordcount/utils"
)

// CopyName returns the name of copy i of the raw file name, e.g.
// "alice.txt" -> "alice_0007.txt".
func CopyName(name string, i int) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(name, ext), i, ext)
}

// Run clears inputDir, then copies every file of rawDir matching pattern n
// times into it. It returns the number of files written. An inputDir that is
// rawDir or one of its parents is rejected before anything is removed.
func Run(rawDir string, inputDir string, n int, pattern string) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("copy count must not be negative, got %d", n)
	}
	// inputDir is cleared below, which must not touch the raw files
	inside, err := utils.Contains(inputDir, rawDir)
	if err != nil {
		return 0, err
	}
	if inside {
		return 0, fmt.Errorf("input directory %s contains the raw directory %s", inputDir, rawDir)
	}
	raws, err := input.List(rawDir, pattern)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		return 0, err
	}
	if err := clearDir(inputDir); err != nil {
		return 0, err
	}
	written := 0
	for i := 0; i < n; i++ {
		for _, raw := range raws {
			dst := filepath.Join(inputDir, CopyName(filepath.Base(raw), i))
			if err := copyFile(raw, dst); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies src to dst keeping the mode and modification time.
func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, fi.ModTime(), fi.ModTime())
}
