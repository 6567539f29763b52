// Package pool implements the worker pool: a fixed number of
// goroutines, each looping synthesize → execute → learn → trend-push until
// told to stop. Concurrency is bounded by a buffered-channel semaphore, one
// permit per worker, acquired for the worker's entire lifetime rather than
// per iteration.
package pool

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/coriolis-dev/shdrift/internal/console"
	"github.com/coriolis-dev/shdrift/internal/learn"
	"github.com/coriolis-dev/shdrift/internal/obslog"
	"github.com/coriolis-dev/shdrift/internal/procrun"
	"github.com/coriolis-dev/shdrift/internal/settings"
	"github.com/coriolis-dev/shdrift/internal/synth"
	"github.com/coriolis-dev/shdrift/internal/trend"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

// idleSleep is how long a worker waits before retrying synthesis after an
// empty vocabulary yields no command.
const idleSleep = 50 * time.Millisecond

// acquireSlice bounds how long a worker waits for a permit before checking
// ctx again, so shutdown is responsive even under contention.
const acquireSlice = 200 * time.Millisecond

// Pool runs a fixed number of worker goroutines against a shared
// vocabulary, observation log, settings record, and trend tracker.
type Pool struct {
	v    *vocab.Vocabulary
	obs  *obslog.Log
	s    *settings.Settings
	tr   *trend.Tracker
	cons *console.Console

	learnParams learn.Params
	runtime     time.Duration

	sem chan struct{}
	wg  sync.WaitGroup
}

// New returns a Pool configured for workers concurrent goroutines.
func New(
	v *vocab.Vocabulary,
	obs *obslog.Log,
	s *settings.Settings,
	tr *trend.Tracker,
	cons *console.Console,
	learnParams learn.Params,
	runtime time.Duration,
	workers int,
) *Pool {
	if workers < 1 {
		workers = 1
	}

	return &Pool{
		v:           v,
		obs:         obs,
		s:           s,
		tr:          tr,
		cons:        cons,
		learnParams: learnParams,
		runtime:     runtime,
		sem:         make(chan struct{}, workers),
	}
}

// Run starts workers and blocks until ctx is canceled, at which point it
// waits for every in-flight iteration to finish before returning.
func (p *Pool) Run(ctx context.Context) {
	workers := cap(p.sem)

	for range workers {
		p.wg.Add(1)

		go func() {
			defer p.wg.Done()
			p.worker(ctx)
		}()
	}

	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context) {
	if !p.acquire(ctx) {
		return
	}
	defer p.release()

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !p.iterate(ctx, rng) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idleSleep):
			}
		}
	}
}

// iterate runs one synthesize→execute→learn→trend-push cycle. It returns
// false when synthesis produced an empty command, signaling the caller to
// back off.
func (p *Pool) iterate(ctx context.Context, rng *rand.Rand) bool {
	snap := p.s.Snapshot()
	cmd := synth.Synthesize(p.v, snap, rng)

	if len(cmd) <= 1 { // just the terminator
		return false
	}

	command := p.resolveCommand(cmd)

	res, err := procrun.Run(ctx, command, p.runtime)
	if err != nil {
		p.cons.Warn("execution: " + err.Error())

		return true
	}

	reward := learn.Update(p.v, p.obs, cmd, res.Output, p.learnParams)
	p.tr.Push(float64(reward))

	p.cons.Println(previewLine(command, reward, res.TimedOut))

	return true
}

// resolveCommand turns an index sequence into a shell command string under
// a short-held vocabulary lock.
func (p *Pool) resolveCommand(cmd []int) string {
	p.v.Lock()
	defer p.v.Unlock()

	var b strings.Builder

	for i, idx := range cmd {
		if idx == vocab.Terminator {
			break
		}

		if i > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(p.v.WordLocked(idx))
	}

	return b.String()
}

func previewLine(command string, reward int, timedOut bool) string {
	outcome := "novel"
	if reward < 0 {
		outcome = "redundant"
	}

	line := fmt.Sprintf("ran: `%s` -> %s, reward=%+d", command, outcome, reward)
	if timedOut {
		line += " (timed out)"
	}

	return line
}

// acquire blocks until a permit is available or ctx is canceled, checking
// ctx in bounded slices so shutdown stays responsive.
func (p *Pool) acquire(ctx context.Context) bool {
	for {
		select {
		case p.sem <- struct{}{}:
			return true
		case <-ctx.Done():
			return false
		case <-time.After(acquireSlice):
		}
	}
}

func (p *Pool) release() {
	<-p.sem
}
