// Package settings holds the command settings record: the mutable
// {length, scope} pair read by the synthesizer and adjusted by the tuner.
package settings

import "sync"

// Bounds on the command settings record.
const (
	// CmdMax is the maximum number of argument slots in a synthesized
	// command; position indices run from 0 to CmdMax-1.
	CmdMax = 10

	// CmdMin is the minimum synthesis length.
	CmdMin = 1

	// SearchScopeMin and SearchScopeMax bound the scope percentage.
	SearchScopeMin = 1
	SearchScopeMax = 100
)

// Snapshot is a consistent, lock-free read of the settings record at a point
// in time.
type Snapshot struct {
	Length int
	Scope  int
}

// Settings is the process-wide command settings record. All mutation and
// reads beyond Snapshot go through the type's lock.
type Settings struct {
	mu     sync.Mutex
	length int
	scope  int
}

// New returns a Settings record initialized to length and scope, clamped to
// their respective bounds.
func New(length, scope int) *Settings {
	return &Settings{
		length: clamp(length, CmdMin, CmdMax),
		scope:  clamp(scope, SearchScopeMin, SearchScopeMax),
	}
}

// Snapshot takes a consistent read of the current length and scope.
func (s *Settings) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{Length: s.length, Scope: s.scope}
}

// AdjustLength adds delta to the synthesis length, clamped to
// [CmdMin, CmdMax]. Used by the tuner; delta is typically +1, 0, or -1.
func (s *Settings) AdjustLength(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.length = clamp(s.length+delta, CmdMin, CmdMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
