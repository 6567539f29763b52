package osfs

import (
	"errors"
	"os"
	"sync"
)

// Fault wraps an [FS] and injects configurable failures, so callers can
// exercise the Persistence I/O error paths deterministically
// without touching the real filesystem.
//
// Unlike a full crash-consistency simulator, Fault only needs to answer one
// question for this codebase's tests: "what does the caller do when this one
// specific call fails?" Each hook below is checked before delegating to the
// wrapped [FS].
type Fault struct {
	fs FS

	mu          sync.Mutex
	failOpen    map[string]error
	failRead    map[string]error
	failWrite   map[string]error
	failRename  map[string]error
	failReadDir map[string]error
}

// NewFault wraps fsys with fault injection. All hooks start empty (no
// failures injected) until configured with the Fail* methods.
func NewFault(fsys FS) *Fault {
	return &Fault{
		fs:          fsys,
		failOpen:    map[string]error{},
		failRead:    map[string]error{},
		failWrite:   map[string]error{},
		failRename:  map[string]error{},
		failReadDir: map[string]error{},
	}
}

// FailOpen makes every later Open/OpenFile/Create of path return err.
func (f *Fault) FailOpen(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOpen[path] = err
}

// FailRead makes ReadFile of path return err.
func (f *Fault) FailRead(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRead[path] = err
}

// FailWrite makes any write (Chmod/Sync on files returned for path) fail.
// Since File operations don't carry the path, callers inject this against
// the returned [File] wrapper directly via [Fault.Open] et al.
func (f *Fault) FailWrite(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite[path] = err
}

// FailRename makes Rename(oldpath, _) return err.
func (f *Fault) FailRename(oldpath string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRename[oldpath] = err
}

// FailReadDir makes ReadDir of path return err.
func (f *Fault) FailReadDir(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReadDir[path] = err
}

func (f *Fault) lookup(m map[string]error, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return m[path]
}

func (f *Fault) Open(path string) (File, error) {
	if err := f.lookup(f.failOpen, path); err != nil {
		return nil, err
	}

	file, err := f.fs.Open(path)
	if err != nil {
		return nil, err
	}

	return f.wrap(path, file), nil
}

func (f *Fault) Create(path string) (File, error) {
	if err := f.lookup(f.failOpen, path); err != nil {
		return nil, err
	}

	file, err := f.fs.Create(path)
	if err != nil {
		return nil, err
	}

	return f.wrap(path, file), nil
}

func (f *Fault) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if err := f.lookup(f.failOpen, path); err != nil {
		return nil, err
	}

	file, err := f.fs.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	return f.wrap(path, file), nil
}

func (f *Fault) ReadFile(path string) ([]byte, error) {
	if err := f.lookup(f.failRead, path); err != nil {
		return nil, err
	}

	return f.fs.ReadFile(path)
}

func (f *Fault) ReadDir(path string) ([]os.DirEntry, error) {
	if err := f.lookup(f.failReadDir, path); err != nil {
		return nil, err
	}

	return f.fs.ReadDir(path)
}

func (f *Fault) MkdirAll(path string, perm os.FileMode) error {
	return f.fs.MkdirAll(path, perm)
}

func (f *Fault) Stat(path string) (os.FileInfo, error) {
	return f.fs.Stat(path)
}

func (f *Fault) Lstat(path string) (os.FileInfo, error) {
	return f.fs.Lstat(path)
}

func (f *Fault) Exists(path string) (bool, error) {
	return f.fs.Exists(path)
}

func (f *Fault) Remove(path string) error {
	return f.fs.Remove(path)
}

func (f *Fault) Rename(oldpath, newpath string) error {
	if err := f.lookup(f.failRename, oldpath); err != nil {
		return err
	}

	return f.fs.Rename(oldpath, newpath)
}

func (f *Fault) wrap(path string, file File) File {
	if err := f.lookup(f.failWrite, path); err != nil {
		return &faultyFile{File: file, err: err}
	}

	return file
}

// faultyFile fails Sync and Chmod once configured, simulating a write that
// makes it into the page cache but never becomes durable.
type faultyFile struct {
	File
	err error
}

func (f *faultyFile) Sync() error {
	if f.err != nil {
		return f.err
	}

	return f.File.Sync()
}

func (f *faultyFile) Chmod(mode os.FileMode) error {
	if f.err != nil {
		return f.err
	}

	return f.File.Chmod(mode)
}

// Compile-time interface check.
var _ FS = (*Fault)(nil)

// ErrInjected is a convenience sentinel tests can use with the Fail* methods.
var ErrInjected = errors.New("injected fault")
