package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by LockFile when another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// Contains reports whether path is dir or lies below it. Relative paths are
// resolved against the working directory first.
func Contains(dir string, path string) (bool, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// FreeSpace returns the bytes available to an unprivileged user on the
// filesystem holding path. It only supports Unix-like systems.
func FreeSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// FileLock is an exclusive advisory lock on a file.
type FileLock struct {
	file *os.File
}

// LockFile creates filename if needed and takes an exclusive flock on it
// without blocking. ErrLocked is returned if the lock is already held.
func LockFile(filename string) (*FileLock, error) {
	for {
		f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			return nil, err
		}
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			if errors.Is(err, unix.EWOULDBLOCK) {
				return nil, fmt.Errorf("%s: %w", filename, ErrLocked)
			}
			return nil, fmt.Errorf("flock %s: %w", filename, err)
		}
		// the previous holder may have removed the file between our open
		// and flock, in which case we locked an orphan inode
		held, err := f.Stat()
		if err == nil {
			var current os.FileInfo
			current, err = os.Stat(filename)
			if err == nil && os.SameFile(held, current) {
				return &FileLock{file: f}, nil
			}
		}
		f.Close()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
}

// Unlock releases the lock and removes the lock file.
func (l *FileLock) Unlock() error {
	name := l.file.Name()
	// remove before unlocking so a waiting run never locks a file that is
	// about to disappear
	rmErr := os.Remove(name)
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	if errors.Is(rmErr, os.ErrNotExist) {
		rmErr = nil
	}
	return errors.Join(rmErr, unlockErr, closeErr)
}
