package spill

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"wordcount/mapreduce/types"
)

// RunWriter writes a run of pairs to a temporary file.
type RunWriter struct {
	file  *os.File
	buf   *bufio.Writer
	count int
}

// CreateRun creates a new run file in dir.
func CreateRun(dir string) (*RunWriter, error) {
	f, err := os.CreateTemp(dir, "run-*.spill")
	if err != nil {
		return nil, fmt.Errorf("failed to create spill file in %s: %w", dir, err)
	}
	return &RunWriter{
		file: f,
		buf:  bufio.NewWriter(f),
	}, nil
}

// Name returns the path of the run file.
func (w *RunWriter) Name() string {
	return w.file.Name()
}

// Len returns the number of pairs written so far.
func (w *RunWriter) Len() int {
	return w.count
}

func (w *RunWriter) Write(p types.Pair) error {
	if err := Send(w.buf, p); err != nil {
		return fmt.Errorf("failed to write spill file %s: %w", w.file.Name(), err)
	}
	w.count++
	return nil
}

// Close flushes buffered frames and closes the file. The file is kept.
func (w *RunWriter) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("failed to close spill file %s: %w", w.file.Name(), err)
	}
	return nil
}

// RunReader reads the pairs of a run file in order.
type RunReader struct {
	file *os.File
	buf  *bufio.Reader
}

// OpenRun opens a run file written by RunWriter.
func OpenRun(filename string) (*RunReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open spill file %s: %w", filename, err)
	}
	return &RunReader{
		file: f,
		buf:  bufio.NewReader(f),
	}, nil
}

// Next returns the next pair, or io.EOF at the end of the run.
func (r *RunReader) Next() (types.Pair, error) {
	p, err := Receive(r.buf)
	if err != nil && err != io.EOF {
		return p, fmt.Errorf("failed to read spill file %s: %w", r.file.Name(), err)
	}
	return p, err
}

func (r *RunReader) Close() error {
	return r.file.Close()
}
