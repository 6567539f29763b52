package osfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
)

// ErrDirSync indicates the parent directory could not be synced after rename.
//
// When returned, the new file is in place but durability of the rename itself
// is not guaranteed across a crash. Callers can detect this with
// errors.Is(err, ErrDirSync).
var ErrDirSync = errors.New("dir sync")

// AtomicWriter writes files atomically using rename.
//
// Persistence (vocabulary, association, observation files) and any other
// component that needs crash-safe saves routes through this type rather than
// writing in place, so a failure mid-write never corrupts the previous state.
type AtomicWriter struct {
	fs FS
}

// NewAtomicWriter creates an AtomicWriter that uses the given filesystem.
func NewAtomicWriter(fsys FS) *AtomicWriter {
	if fsys == nil {
		panic("fs is nil")
	}

	return &AtomicWriter{fs: fsys}
}

// WriteOptions configures Write behavior.
type WriteOptions struct {
	// SyncDir controls whether the parent directory is synced after rename.
	SyncDir bool

	// Perm specifies the file permissions. Must be non-zero.
	Perm os.FileMode
}

// DefaultOptions returns the default atomic write options: sync the
// directory, mode 0o644.
func (*AtomicWriter) DefaultOptions() WriteOptions {
	return WriteOptions{SyncDir: true, Perm: 0o644}
}

// WriteWithDefaults writes content atomically using [AtomicWriter.DefaultOptions].
func (w *AtomicWriter) WriteWithDefaults(path string, r io.Reader) error {
	return w.Write(path, r, w.DefaultOptions())
}

// Write writes data from r to path atomically and durably.
//
// It writes to a temp file in the same directory, syncs it, renames it over
// path, then syncs the parent directory (if opts.SyncDir is true). If the
// directory sync step fails, the returned error satisfies
// errors.Is(err, ErrDirSync) — the new content is already in place.
func (w *AtomicWriter) Write(path string, r io.Reader, opts WriteOptions) error {
	if path == "" {
		return errors.New("path is empty")
	}

	if opts.Perm == 0 {
		return errors.New("opts.Perm must be non-zero")
	}

	dir, base := filepath.Split(path)
	if base == "" || base == "." {
		return fmt.Errorf("path is invalid: %q", path)
	}

	if dir == "" {
		dir = "."
	}

	dir = filepath.Clean(dir)

	tmpFile, tmpPath, err := w.createTempFile(dir, base, opts.Perm)
	if err != nil {
		return err
	}

	cleanup := func() error {
		closeErr := closeNamed(tmpPath, tmpFile)
		removeErr := w.removeIfExists(tmpPath)

		return errors.Join(closeErr, removeErr)
	}

	if chmodErr := tmpFile.Chmod(opts.Perm); chmodErr != nil {
		return errors.Join(fmt.Errorf("chmod temp file %q: %w", tmpPath, chmodErr), cleanup())
	}

	if _, copyErr := io.Copy(tmpFile, r); copyErr != nil {
		return errors.Join(fmt.Errorf("write temp file %q: %w", tmpPath, copyErr), cleanup())
	}

	if syncErr := tmpFile.Sync(); syncErr != nil {
		return errors.Join(fmt.Errorf("sync temp file %q: %w", tmpPath, syncErr), cleanup())
	}

	if renameErr := w.fs.Rename(tmpPath, path); renameErr != nil {
		return errors.Join(fmt.Errorf("rename: %w", renameErr), cleanup())
	}

	cleanupErr := cleanup()

	if opts.SyncDir {
		if err := w.syncDir(dir); err != nil {
			return errors.Join(err, cleanupErr)
		}
	}

	return nil
}

const maxTempFileAttempts = 10000

var tempFileCounter atomic.Uint64

func (w *AtomicWriter) createTempFile(dir, base string, perm os.FileMode) (File, string, error) {
	for range maxTempFileAttempts {
		seq := tempFileCounter.Add(1)
		path := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", base, seq))

		file, err := w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return file, path, nil
		}

		if os.IsExist(err) {
			continue
		}

		return nil, "", fmt.Errorf("create temp file: %w", err)
	}

	return nil, "", fmt.Errorf("exhausted temp file attempts in %q", dir)
}

func (w *AtomicWriter) syncDir(dirPath string) error {
	dirFd, err := w.fs.Open(dirPath)
	if err != nil {
		return errors.Join(ErrDirSync, fmt.Errorf("open dir %q: %w", dirPath, err))
	}

	syncErr := dirFd.Sync()
	if syncErr == nil {
		return closeNamed(dirPath, dirFd)
	}

	return errors.Join(ErrDirSync, fmt.Errorf("%q: %w", dirPath, syncErr), closeNamed(dirPath, dirFd))
}

func (w *AtomicWriter) removeIfExists(path string) error {
	err := w.fs.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp file %q: %w", path, err)
	}

	return nil
}

func closeNamed(path string, file File) error {
	err := file.Close()
	if err == nil {
		return nil
	}

	return fmt.Errorf("close %q: %w", path, err)
}
