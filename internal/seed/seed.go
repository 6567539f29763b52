// Package seed implements the PATH-scanning vocabulary seeder: it
// appends the base names of executable regular files found in a
// colon-separated directory list to a vocabulary, so a fresh run starts
// with a vocabulary of real command names instead of an empty one.
package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/coriolis-dev/shdrift/internal/osfs"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

// PerDirCap bounds how many entries one directory contributes.
const PerDirCap = 512

// DirTimeout bounds how long scanning a single directory may take.
const DirTimeout = 2 * time.Second

// FallbackPath is used when neither an override nor $PATH is available.
const FallbackPath = "/usr/bin:/bin:/usr/local/bin"

// Seed scans the directories named by pathOverride (or $PATH, or
// [FallbackPath] if both are empty) and appends the base name of every
// regular, executable, non-symlink file found to v. It returns the number
// of new words added.
func Seed(v *vocab.Vocabulary, pathOverride string) (int, error) {
	pathList := pathOverride
	if pathList == "" {
		pathList = os.Getenv("PATH")
	}

	if pathList == "" {
		pathList = FallbackPath
	}

	return seedFrom(osfs.NewReal(), v, pathList)
}

// seedFrom is the filesystem-injected core of Seed, used directly by tests
// against a fault-injecting filesystem.
func seedFrom(fsys osfs.FS, v *vocab.Vocabulary, pathList string) (int, error) {
	added := 0

	var errs []error

	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}

		n, err := scanDir(fsys, v, dir)
		added += n

		if err != nil {
			errs = append(errs, err)
		}
	}

	return added, errors.Join(errs...)
}

func scanDir(fsys osfs.FS, v *vocab.Vocabulary, dir string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DirTimeout)
	defer cancel()

	type result struct {
		entries []os.DirEntry
		err     error
	}

	resultCh := make(chan result, 1)

	go func() {
		entries, err := fsys.ReadDir(dir)
		resultCh <- result{entries: entries, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return 0, res.err
		}

		return addExecutables(fsys, v, dir, res.entries), nil
	}
}

func addExecutables(fsys osfs.FS, v *vocab.Vocabulary, dir string, entries []os.DirEntry) int {
	added := 0

	for _, entry := range entries {
		if added >= PerDirCap {
			break
		}

		if isExecutableRegularFile(fsys, filepath.Join(dir, entry.Name())) {
			before := v.NumWords()
			v.Append(entry.Name())

			if v.NumWords() > before {
				added++
			}
		}
	}

	return added
}

func isExecutableRegularFile(fsys osfs.FS, path string) bool {
	info, err := fsys.Lstat(path)
	if err != nil {
		return false
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return false
	}

	if !info.Mode().IsRegular() {
		return false
	}

	return info.Mode().Perm()&0o111 != 0
}
