// Package job runs the word-count pipeline:
//
//	INIT -> LOADING -> MAPPING -> SORTING -> REDUCING -> WRITING -> MARKED
//
// Any failure moves the run to FAILED. A failed run is not resumed; a new
// Job starts again from INIT.
package job

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wordcount/mapreduce/functions"
	"wordcount/mapreduce/input"
	"wordcount/mapreduce/output"
	"wordcount/mapreduce/shuffle"
	"wordcount/mapreduce/types"
	"wordcount/utils"
)

// Config is the explicit configuration of a job run.
type Config struct {
	InputDir  string
	OutputDir string
	// Pattern selects input files, input.DefaultPattern if empty.
	Pattern string
	// Workers is the number of concurrent mappers, 1 if < 1.
	Workers int
	// MaxInMemoryPairs switches the shuffle to an external sort above this
	// many pairs; 0 keeps everything in memory.
	MaxInMemoryPairs int
	SpillDir         string
	Logger           *log.Logger
}

func (c Config) validate() error {
	if c.InputDir == "" {
		return errors.New("input directory is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.MaxInMemoryPairs < 0 {
		return fmt.Errorf("max in-memory pairs must not be negative, got %d", c.MaxInMemoryPairs)
	}
	// artifacts of earlier runs are removed from the output directory
	inside, err := utils.Contains(c.OutputDir, c.InputDir)
	if err != nil {
		return err
	}
	if inside {
		return fmt.Errorf("output directory %s contains the input directory %s", c.OutputDir, c.InputDir)
	}
	return nil
}

// LockPath returns the lock file guarding outputDir.
func LockPath(outputDir string) string {
	return filepath.Clean(outputDir) + ".lock"
}

type Job struct {
	cfg    Config
	logger *log.Logger
	writer *output.Writer
	sorter *shuffle.Sorter

	mutex      sync.Mutex
	stage      types.Stage
	stageStart time.Time
	summary    *Summary
}

func New(cfg Config) *Job {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Job{
		cfg:    cfg,
		logger: logger,
		writer: output.NewWriter(),
		sorter: &shuffle.Sorter{
			MaxInMemory: cfg.MaxInMemoryPairs,
			SpillDir:    cfg.SpillDir,
			Logger:      logger,
		},
	}
}

// Run is New(cfg).Run(ctx).
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	return New(cfg).Run(ctx)
}

// Stage returns the current state of the run.
func (j *Job) Stage() types.Stage {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.stage
}

func (j *Job) printLog(format string, a ...any) {
	j.logger.Printf("[job] "+format, a...)
}

// advance moves the run to the stage following the current one and records
// how long the current one took.
func (j *Job) advance() {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	now := time.Now()
	from := j.stage
	to := from.Next()
	j.summary.addDuration(from, now.Sub(j.stageStart))
	j.stage = to
	j.stageStart = now
	j.summary.Stage = to
	j.printLog("state %s -> %s", from, to)
}

func (j *Job) fail(err error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	from := j.stage
	j.summary.addDuration(from, time.Since(j.stageStart))
	j.summary.FailedStage = from
	j.summary.Stage = types.StageFailed
	j.summary.Error = err.Error()
	j.stage = types.StageFailed
	j.printLog("state %s -> %s: %v", from, types.StageFailed, err)
}

func (j *Job) newError(kind error, path string, err error) *Error {
	return &Error{
		Stage: j.Stage(),
		Path:  path,
		Kind:  kind,
		Err:   err,
	}
}

// pathOf returns the path carried by err, or fallback.
func pathOf(err error, fallback string) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Path
	}
	return fallback
}

// Run executes the job once. The returned Summary is non-nil whenever the
// run started, also on failure.
func (j *Job) Run(ctx context.Context) (summary *Summary, err error) {
	j.mutex.Lock()
	if j.summary != nil {
		stage := j.stage
		j.mutex.Unlock()
		if !stage.Terminal() {
			return nil, &Error{Stage: stage, Kind: ErrAlreadyRun, Err: errors.New("job is still running")}
		}
		return nil, &Error{Stage: stage, Kind: ErrAlreadyRun, Err: errors.New("create a new job to run again")}
	}
	j.summary = &Summary{
		InputDir:  j.cfg.InputDir,
		OutputDir: j.cfg.OutputDir,
		Stage:     types.StageInit,
		StartedAt: time.Now(),
	}
	j.stageStart = j.summary.StartedAt
	j.mutex.Unlock()
	summary = j.summary

	defer func() {
		summary.FinishedAt = time.Now()
		if err != nil {
			j.fail(err)
		} else {
			j.printLog("completed in %s: %d files, %d lines, %d tokens, %d distinct words",
				summary.FinishedAt.Sub(summary.StartedAt), summary.Files, summary.Lines, summary.Tokens, summary.Words)
		}
	}()

	if err := j.cfg.validate(); err != nil {
		return summary, j.newError(ErrInvalidConfig, "", err)
	}

	// the lock file sits next to the output directory, which may not exist
	// yet
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(j.cfg.OutputDir)), 0755); err != nil {
		return summary, j.newError(ErrOutputWrite, pathOf(err, j.cfg.OutputDir), err)
	}
	lock, err := utils.LockFile(LockPath(j.cfg.OutputDir))
	if err != nil {
		kind := ErrOutputWrite
		if errors.Is(err, utils.ErrLocked) {
			kind = ErrLocked
		}
		return summary, j.newError(kind, LockPath(j.cfg.OutputDir), err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			j.printLog("failed to release %s: %v", LockPath(j.cfg.OutputDir), unlockErr)
		}
	}()

	if err := output.Invalidate(j.cfg.OutputDir); err != nil {
		return summary, j.newError(ErrOutputWrite, pathOf(err, j.cfg.OutputDir), err)
	}

	j.advance() // LOADING
	files, err := input.Load(j.cfg.InputDir, j.cfg.Pattern)
	if err != nil {
		kind := ErrInputAccess
		if errors.Is(err, input.ErrEncoding) {
			kind = ErrEncoding
		}
		return summary, j.newError(kind, pathOf(err, j.cfg.InputDir), err)
	}
	summary.Files = len(files)
	for _, f := range files {
		summary.Lines += f.LineCount()
	}
	j.printLog("loaded %d files from %s", len(files), j.cfg.InputDir)

	j.advance() // MAPPING
	pairs, err := functions.MapFiles(ctx, files, j.cfg.Workers)
	if err != nil {
		return summary, j.newError(ErrPipeline, "", err)
	}
	summary.Tokens = len(pairs)

	j.advance() // SORTING
	stream, err := j.sorter.Sort(ctx, pairs)
	if err != nil {
		return summary, j.newError(ErrPipeline, pathOf(err, j.cfg.SpillDir), err)
	}
	defer stream.Close()

	j.advance() // REDUCING
	reduced, err := functions.ReduceStream(stream)
	if err != nil {
		return summary, j.newError(ErrPipeline, pathOf(err, ""), err)
	}
	if err := stream.Close(); err != nil {
		return summary, j.newError(ErrPipeline, pathOf(err, j.cfg.SpillDir), err)
	}
	summary.Words = len(reduced)
	if err := ctx.Err(); err != nil {
		return summary, j.newError(ErrPipeline, "", err)
	}

	j.advance() // WRITING
	if free, err := utils.FreeSpace(filepath.Dir(filepath.Clean(j.cfg.OutputDir))); err == nil {
		j.printLog("writing %d words to %s, %d bytes free", len(reduced), j.cfg.OutputDir, free)
	}
	result, err := j.writer.Commit(j.cfg.OutputDir, reduced)
	if err != nil {
		return summary, j.newError(ErrOutputWrite, pathOf(err, j.cfg.OutputDir), err)
	}
	summary.PartPath = result.PartPath
	summary.Hash = result.Hash

	j.advance() // MARKED
	return summary, nil
}
