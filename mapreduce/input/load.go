package input

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"wordcount/utils"
)

// DefaultPattern selects the files of an input directory.
const DefaultPattern = "*.txt"

// ErrEncoding is returned for a file that is not UTF-8 text.
var ErrEncoding = errors.New("not valid UTF-8 text")

// File is the content of one input file.
type File struct {
	Path    string
	Content string
}

// Lines returns the lines of the file, without line terminators.
func (f File) Lines() []string {
	lines := make([]string, 0, strings.Count(f.Content, "\n")+1)
	for line := range strings.Lines(f.Content) {
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	return lines
}

// LineCount returns len(f.Lines()) without splitting.
func (f File) LineCount() int {
	n := strings.Count(f.Content, "\n")
	if f.Content != "" && !strings.HasSuffix(f.Content, "\n") {
		n++
	}
	return n
}

// CheckText returns ErrEncoding unless data is valid UTF-8 without NUL
// bytes, which only binary files carry.
func CheckText(data []byte) error {
	if bytes.IndexByte(data, 0) >= 0 {
		return fmt.Errorf("%w: contains NUL bytes", ErrEncoding)
	}
	if !utf8.Valid(data) {
		return ErrEncoding
	}
	return nil
}

// List returns the paths of the regular files in dir whose names match
// pattern, sorted by name.
func List(dir string, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := utils.NewOrderedList[string]()
	for _, entry := range entries {
		matched, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
		}
		if !matched {
			continue
		}
		if !entry.Type().IsRegular() {
			// follow symlinks, skip directories
			fi, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			if !fi.Mode().IsRegular() {
				continue
			}
		}
		names.Add(entry.Name())
	}
	paths := make([]string, 0, names.Len())
	for _, name := range names.Items() {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// Load reads every input file of dir. Any unreadable or non-text file fails
// the whole load; the returned error is a *fs.PathError naming the file.
func Load(dir string, pattern string) ([]File, error) {
	paths, err := List(dir, pattern)
	if err != nil {
		return nil, err
	}
	files := make([]File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := CheckText(data); err != nil {
			return nil, &fs.PathError{Op: "decode", Path: path, Err: err}
		}
		files = append(files, File{Path: path, Content: string(data)})
	}
	return files, nil
}
