package shuffle

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"wordcount/mapreduce/types"
	"wordcount/spill"
	"wordcount/utils"
)

// ErrInsufficientSpace is returned when the spill directory cannot hold
// the runs of an external sort.
var ErrInsufficientSpace = errors.New("insufficient space for spill files")

// Sorter sorts pairs in memory, or, when MaxInMemory is positive and
// exceeded, as sorted runs spilled to SpillDir and merged back.
type Sorter struct {
	// MaxInMemory is the largest run kept in memory; 0 means unlimited.
	MaxInMemory int
	// SpillDir holds run files, os.TempDir() if empty.
	SpillDir string
	Logger   *log.Logger

	// freeSpace is replaced in tests.
	freeSpace func(path string) (uint64, error)
}

func (s *Sorter) logf(format string, a ...any) {
	if s.Logger != nil {
		s.Logger.Printf("[shuffle] "+format, a...)
	}
}

// Sort returns a Stream over pairs ordered by word. pairs may be
// reordered. The caller must Close the stream to remove spill files.
func (s *Sorter) Sort(ctx context.Context, pairs []types.Pair) (Stream, error) {
	if s.MaxInMemory <= 0 || len(pairs) <= s.MaxInMemory {
		return FromSlice(Sort(pairs)), nil
	}
	dir := s.SpillDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := s.checkSpace(dir, pairs); err != nil {
		return nil, err
	}

	runs := make([]string, 0, len(pairs)/s.MaxInMemory+1)
	spilled := 0
	cleanup := func() {
		for _, name := range runs {
			os.Remove(name)
		}
	}
	for start := 0; start < len(pairs); start += s.MaxInMemory {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		end := min(start+s.MaxInMemory, len(pairs))
		name, n, err := writeRun(dir, Sort(pairs[start:end]))
		if name != "" {
			runs = append(runs, name)
		}
		spilled += n
		if err != nil {
			cleanup()
			return nil, err
		}
	}
	s.logf("spilled %d pairs into %d runs under %s", spilled, len(runs), dir)

	m, err := newMerger(runs)
	if err != nil {
		cleanup()
		return nil, err
	}
	return m, nil
}

// checkSpace estimates the size of all runs and compares it with the free
// space of dir.
func (s *Sorter) checkSpace(dir string, pairs []types.Pair) error {
	freeSpace := s.freeSpace
	if freeSpace == nil {
		freeSpace = utils.FreeSpace
	}
	free, err := freeSpace(dir)
	if err != nil {
		return err
	}
	var need uint64
	for _, p := range pairs {
		// 8 byte frame header, 2 tags, length and count varints
		need += uint64(len(p.Word)) + 8 + 4 + 10
	}
	if need > free {
		return fmt.Errorf("%w: %s has %d bytes free, runs need about %d", ErrInsufficientSpace, dir, free, need)
	}
	return nil
}

// writeRun spills sorted into a new run file under dir and returns its name
// and the number of pairs written.
func writeRun(dir string, sorted []types.Pair) (string, int, error) {
	w, err := spill.CreateRun(dir)
	if err != nil {
		return "", 0, err
	}
	for _, p := range sorted {
		if err := w.Write(p); err != nil {
			w.Close()
			return w.Name(), w.Len(), err
		}
	}
	return w.Name(), w.Len(), w.Close()
}

// runHead is the current pair of one run in the merge heap.
type runHead struct {
	pair   types.Pair
	reader *spill.RunReader
}

type runHeap []*runHead

func (h runHeap) Len() int           { return len(h) }
func (h runHeap) Less(i, j int) bool { return h[i].pair.Word < h[j].pair.Word }
func (h runHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *runHeap) Push(x any)        { *h = append(*h, x.(*runHead)) }
func (h *runHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// merger is a k-way merge over sorted run files.
type merger struct {
	runs    []string
	readers []*spill.RunReader
	heap    runHeap
	current types.Pair
	err     error
}

func newMerger(runs []string) (*merger, error) {
	m := &merger{runs: runs}
	for _, name := range runs {
		r, err := spill.OpenRun(name)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.readers = append(m.readers, r)
		p, err := r.Next()
		if err == io.EOF {
			continue
		}
		if err != nil {
			m.Close()
			return nil, err
		}
		m.heap = append(m.heap, &runHead{pair: p, reader: r})
	}
	heap.Init(&m.heap)
	return m, nil
}

func (m *merger) Next() bool {
	if m.err != nil || len(m.heap) == 0 {
		return false
	}
	head := m.heap[0]
	m.current = head.pair
	p, err := head.reader.Next()
	switch {
	case err == io.EOF:
		heap.Pop(&m.heap)
	case err != nil:
		m.err = err
		return false
	default:
		head.pair = p
		heap.Fix(&m.heap, 0)
	}
	return true
}

func (m *merger) Pair() types.Pair {
	return m.current
}

func (m *merger) Err() error {
	return m.err
}

// Close closes and removes every run file.
func (m *merger) Close() error {
	var errs []error
	for _, r := range m.readers {
		errs = append(errs, r.Close())
	}
	for _, name := range m.runs {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	m.readers = nil
	m.runs = nil
	m.heap = nil
	return errors.Join(errs...)
}
