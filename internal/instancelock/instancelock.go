// Package instancelock implements the single-writer instance guard:
// an advisory flock(2) over a `.lock` file inside the persistence
// directory, held for the process's lifetime so a second instance pointed
// at the same directory fails fast instead of corrupting shared state.
//
// This is a deliberately narrower cousin of a general-purpose file locker:
// exclusive-only, non-blocking only, no shared/read locks, no
// timeout polling. One process acquires one lock and holds it until it
// exits.
package instancelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/coriolis-dev/shdrift/internal/osfs"
)

// LockFileName is the file name used inside the persistence directory.
const LockFileName = ".lock"

// ErrLocked is returned by TryAcquire when another process already holds
// the lock.
var ErrLocked = errors.New("instance lock already held")

// Lock represents a held instance lock. Release it via [Lock.Release].
type Lock struct {
	file osfs.File
}

// TryAcquire opens (creating if absent) dir/.lock and attempts a
// non-blocking exclusive flock. It returns [ErrLocked] if another process
// already holds it.
func TryAcquire(fsys osfs.FS, dir string) (*Lock, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create persistence directory: %w", err)
	}

	path := filepath.Join(dir, LockFileName)

	file, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := flockRetryEINTR(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}

		return nil, fmt.Errorf("flock %q: %w", path, err)
	}

	return &Lock{file: file}, nil
}

// Release unlocks and closes the lock file. Idempotent.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	unlockErr := flockRetryEINTR(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	return errors.Join(unlockErr, closeErr)
}

func flockRetryEINTR(fd, how int) error {
	const maxEINTRRetries = 10000

	var err error

	for range maxEINTRRetries {
		err = unix.Flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}
