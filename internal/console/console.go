// Package console implements the dedicated logging lock: a
// mutex-guarded writer wrapping stdout/stderr so concurrent workers can
// print per-iteration previews without interleaving, and so warnings raised
// along the way stay visible rather than scrolling off.
package console

import (
	"fmt"
	"io"
	"sync"
)

// Console serializes output from concurrent workers and buffers warnings
// for visibility at both ends of a run.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

// New returns a Console writing normal output to out and warnings to
// errOut.
func New(out, errOut io.Writer) *Console {
	return &Console{out: out, errOut: errOut}
}

// Warn records a non-fatal issue for later display. It does not print
// immediately; see [Console.Println].
func (c *Console) Warn(issue string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warnings = append(c.warnings, issue)
}

// Println prints one line of worker output, serialized against concurrent
// callers. On the first call, any warnings buffered so far are flushed to
// stderr first, so they are not lost if the process is killed before
// Finish.
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flushWarningsStartLocked()
	_, _ = fmt.Fprintln(c.out, a...)
}

// Finish flushes any remaining warnings to stderr a second time, so they
// are visible even if the run's output was long or piped through a
// paginator. It returns the number of warnings recorded.
func (c *Console) Finish() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flushWarningsStartLocked()

	for _, w := range c.warnings {
		_, _ = fmt.Fprintln(c.errOut, "warning:", w)
	}

	return len(c.warnings)
}

func (c *Console) flushWarningsStartLocked() {
	if c.started || len(c.warnings) == 0 {
		return
	}

	for _, w := range c.warnings {
		_, _ = fmt.Fprintln(c.errOut, "warning:", w)
	}

	c.started = true
}
