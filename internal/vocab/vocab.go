// Package vocab implements the vocabulary: an append-only, indexed
// sequence of unique words paired with the association map that
// scores co-occurrences between them at specific argument positions.
package vocab

import (
	"sync"

	"github.com/coriolis-dev/shdrift/internal/assoc"
)

// Terminator is the reserved word index marking the end of an index
// sequence. It is never a valid word index.
const Terminator = -1

// Vocabulary owns the ordered, deduplicated word list and the association
// map keyed on word indices. All mutation goes through the exported methods,
// which take the vocabulary's lock; callers that need atomicity across
// several operations (e.g. command synthesis's consistent-snapshot
// requirement) use [Vocabulary.Lock]/[Vocabulary.Unlock] directly.
type Vocabulary struct {
	mu    sync.Mutex
	words []string
	index map[string]int
	assoc *assoc.Map
}

// New returns an empty vocabulary.
func New() *Vocabulary {
	return &Vocabulary{
		index: make(map[string]int),
		assoc: assoc.New(),
	}
}

// Lock acquires the vocabulary's exclusive lock. Callers that need a
// multi-step consistent view (command synthesis, the learning updater's
// association phase) hold it for the duration; everything else should
// prefer the short-lived convenience methods below.
func (v *Vocabulary) Lock() { v.mu.Lock() }

// Unlock releases the vocabulary's exclusive lock.
func (v *Vocabulary) Unlock() { v.mu.Unlock() }

// Assoc returns the association map owned by this vocabulary. Callers must
// hold the vocabulary's lock (directly, or via one of the convenience
// methods) before reading or mutating it.
func (v *Vocabulary) Assoc() *assoc.Map { return v.assoc }

// NumWords returns the number of distinct words, taking the lock itself.
func (v *Vocabulary) NumWords() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.words)
}

// NumWordsLocked returns the number of distinct words. The caller must
// already hold the lock (via [Vocabulary.Lock]).
func (v *Vocabulary) NumWordsLocked() int {
	return len(v.words)
}

// FindLocked returns the index of token and true, or (0, false) if it is not
// present. The caller must already hold the lock.
func (v *Vocabulary) FindLocked(token string) (int, bool) {
	idx, ok := v.index[token]

	return idx, ok
}

// Find is the self-locking variant of FindLocked.
func (v *Vocabulary) Find(token string) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.FindLocked(token)
}

// WordLocked returns the word at idx. The caller must already hold the lock
// and idx must be in range — callers resolve indices to strings only while
// holding the lock that produced them.
func (v *Vocabulary) WordLocked(idx int) string {
	return v.words[idx]
}

// Word is the self-locking variant of WordLocked.
func (v *Vocabulary) Word(idx int) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.WordLocked(idx)
}

// AppendLocked appends token if it is non-empty and not already present,
// returning its index either way. The caller must already hold the lock.
func (v *Vocabulary) AppendLocked(token string) int {
	if token == "" {
		return -1
	}

	if idx, ok := v.index[token]; ok {
		return idx
	}

	idx := len(v.words)
	v.words = append(v.words, token)
	v.index[token] = idx

	return idx
}

// Append is the self-locking variant of AppendLocked. Used by
// persistence-load and the seed collaborator; the learning updater never
// calls this, since vocabulary growth happens only at load/seed time, not
// while resolving tokens from executed output.
func (v *Vocabulary) Append(token string) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.AppendLocked(token)
}
