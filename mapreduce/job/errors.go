package job

import (
	"errors"
	"fmt"

	"wordcount/mapreduce/input"
	"wordcount/mapreduce/types"
	"wordcount/utils"
)

// Error kinds. Every error returned by Run is an *Error whose Kind is one
// of these, so errors.Is(err, ErrEncoding) works on it.
var (
	ErrInvalidConfig = errors.New("invalid job config")
	ErrInputAccess   = errors.New("input access error")
	ErrEncoding      = input.ErrEncoding
	ErrOutputWrite   = errors.New("output write error")
	ErrLocked        = utils.ErrLocked
	ErrPipeline      = errors.New("pipeline error")
	ErrAlreadyRun    = errors.New("job has already been run")
)

// Error is a failed job run: the stage it failed in, the path involved if
// any, the kind of failure and its cause.
type Error struct {
	Stage types.Stage
	Path  string
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s failed (%v) at %s: %v", e.Stage, e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s failed (%v): %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
