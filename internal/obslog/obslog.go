// Package obslog implements the observation log: an append-only,
// ordered sequence of tokenized output lines, each a sequence of word
// indices.
package obslog

import "sync"

// Log owns the ordered sequence of observed, tokenized lines.
type Log struct {
	mu    sync.Mutex
	lines [][]int
}

// New returns an empty observation log.
func New() *Log {
	return &Log{}
}

// Lock acquires the log's exclusive lock. The learning updater holds it
// across its redundancy check and (conditional) append, and always takes
// it before the vocabulary lock.
func (l *Log) Lock() { l.mu.Lock() }

// Unlock releases the log's exclusive lock.
func (l *Log) Unlock() { l.mu.Unlock() }

// AppendLocked appends line, taking ownership of the slice. The caller must
// already hold the lock.
func (l *Log) AppendLocked(line []int) {
	l.lines = append(l.lines, line)
}

// Append is the self-locking variant of AppendLocked.
func (l *Log) Append(line []int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.AppendLocked(line)
}

// LenLocked returns the number of stored lines. The caller must already hold
// the lock.
func (l *Log) LenLocked() int {
	return len(l.lines)
}

// Len is the self-locking variant of LenLocked.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.LenLocked()
}

// LineLocked returns the line at index i. The caller must already hold the
// lock.
func (l *Log) LineLocked(i int) []int {
	return l.lines[i]
}

// EachLocked calls fn for every stored line, in insertion order. The caller
// must already hold the lock; fn must not mutate the log.
func (l *Log) EachLocked(fn func(line []int)) {
	for _, line := range l.lines {
		fn(line)
	}
}
