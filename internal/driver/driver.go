// Package driver implements the CLI entry point's testable core: flag
// parsing, config/persistence/seed loading, and the pool+tuner assembly
// with a two-stage signal/timeout shutdown.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/coriolis-dev/shdrift/internal/config"
	"github.com/coriolis-dev/shdrift/internal/console"
	"github.com/coriolis-dev/shdrift/internal/instancelock"
	"github.com/coriolis-dev/shdrift/internal/learn"
	"github.com/coriolis-dev/shdrift/internal/osfs"
	"github.com/coriolis-dev/shdrift/internal/persist"
	"github.com/coriolis-dev/shdrift/internal/pool"
	"github.com/coriolis-dev/shdrift/internal/seed"
	"github.com/coriolis-dev/shdrift/internal/settings"
	"github.com/coriolis-dev/shdrift/internal/trend"
	"github.com/coriolis-dev/shdrift/internal/tuner"
)

// shutdownGrace bounds how long Run waits for workers to finish after the
// first termination signal before forcing exit on a second signal or
// timeout.
const shutdownGrace = 5 * time.Second

// Run parses args, assembles the learning loop, and runs it until sigCh
// fires or the context is otherwise done. It returns the process exit code.
// sigCh may be nil in tests that don't exercise signal handling.
func Run(out, errOut io.Writer, args []string, workDir string, sigCh <-chan os.Signal) int {
	opts, exitCode, handled := parseFlags(out, errOut, args)
	if handled {
		return exitCode
	}

	cfg, err := config.Load(workDir, opts.configPath, opts.overrides)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	fsys := osfs.NewReal()
	persistDir := filepath.Dir(filepath.Join(workDir, cfg.VocabPath))

	lock, err := instancelock.TryAcquire(fsys, persistDir)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}
	defer lock.Release() //nolint:errcheck

	if err := config.SaveSnapshot(persistDir, cfg); err != nil {
		fmt.Fprintln(errOut, "warning: could not write config snapshot:", err)
	}

	cons := console.New(out, errOut)

	paths := persist.Paths{
		Vocab: filepath.Join(workDir, cfg.VocabPath),
		Assoc: filepath.Join(workDir, cfg.AssocPath),
		Obs:   filepath.Join(workDir, cfg.ObsPath),
	}

	v, obs, err := persist.Load(fsys, paths, func(msg string) { cons.Warn("persistence: " + msg) })
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	if v.NumWords() == 0 || opts.reseed {
		if _, err := seed.Seed(v, ""); err != nil {
			cons.Warn("seed: " + err.Error())
		}
	}

	s := settings.New(cfg.Length, cfg.Scope)
	tr := trend.New(trend.DefaultWindow)

	learnParams := learn.Params{
		RedundancyThreshold: cfg.RedundancyThreshold,
		Reward:              cfg.Reward,
		Penalty:             cfg.Penalty,
		StoreRedundant:      learn.DefaultStoreRedundant,
	}

	p := pool.New(v, obs, s, tr, cons, learnParams, time.Duration(cfg.RuntimeSeconds)*time.Second, cfg.Workers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	go func() {
		defer close(done)

		tunerCtx, tunerCancel := context.WithCancel(ctx)
		defer tunerCancel()

		go tuner.Run(tunerCtx, s, tr, time.Duration(cfg.TunerIntervalMillis)*time.Millisecond)

		p.Run(ctx)
	}()

	exitCode = waitForShutdown(done, sigCh, cancel, errOut)

	if err := persist.Save(fsys, paths, v, obs); err != nil {
		fmt.Fprintln(errOut, "error saving state:", err)

		if exitCode == 0 {
			exitCode = 1
		}
	}

	cons.Finish()

	return exitCode
}

// waitForShutdown implements the two-stage signal/timeout shutdown: the
// first signal cancels the context and starts a grace period; a second
// signal or the grace period expiring forces immediate return.
func waitForShutdown(done <-chan struct{}, sigCh <-chan os.Signal, cancel context.CancelFunc, errOut io.Writer) int {
	select {
	case <-done:
		return 0
	case <-sigCh:
		fmt.Fprintln(errOut, "shutting down...")
		cancel()
	}

	select {
	case <-done:
		return 0
	case <-time.After(shutdownGrace):
		fmt.Fprintln(errOut, "graceful shutdown timed out, forcing exit")

		return 1
	case <-sigCh:
		fmt.Fprintln(errOut, "graceful shutdown interrupted, forcing exit")

		return 1
	}
}

type cliOptions struct {
	configPath string
	reseed     bool
	overrides  config.Overrides
}

func parseFlags(out, errOut io.Writer, args []string) (cliOptions, int, bool) {
	fs := flag.NewFlagSet("shdrift", flag.ContinueOnError)
	fs.SetOutput(errOut)

	help := fs.BoolP("help", "h", false, "show usage and exit")
	workers := fs.IntP("workers", "w", config.DefaultWorkers, "worker concurrency (1..8)")
	length := fs.IntP("length", "l", 3, "initial command length")
	scope := fs.IntP("scope", "s", config.DefaultScope, "initial search scope percentage")
	vocabPath := fs.String("vocab", "", "vocabulary file path")
	assocPath := fs.String("assoc", "", "association file path")
	obsPath := fs.String("obs", "", "observation file path")
	runtimeSeconds := fs.Int("runtime", config.DefaultRuntimeSeconds, "per-command runtime budget in seconds")
	reseed := fs.Bool("reseed", false, "force a PATH re-scan even if the vocabulary is non-empty")
	configPath := fs.StringP("config", "c", "", "explicit project config file path")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, 1, true
	}

	if *help {
		fs.SetOutput(out)
		fmt.Fprintln(out, "shdrift: an exploratory shell-driving learning agent")
		fmt.Fprintln(out)
		fs.PrintDefaults()

		return cliOptions{}, 0, true
	}

	var overrides config.Overrides
	if fs.Changed("workers") {
		overrides.Workers = workers
	}

	if fs.Changed("length") {
		overrides.Length = length
	}

	if fs.Changed("scope") {
		overrides.Scope = scope
	}

	if fs.Changed("runtime") {
		overrides.RuntimeSeconds = runtimeSeconds
	}

	if fs.Changed("vocab") {
		overrides.VocabPath = vocabPath
	}

	if fs.Changed("assoc") {
		overrides.AssocPath = assocPath
	}

	if fs.Changed("obs") {
		overrides.ObsPath = obsPath
	}

	return cliOptions{configPath: *configPath, reseed: *reseed, overrides: overrides}, 0, false
}
