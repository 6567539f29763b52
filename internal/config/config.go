// Package config implements the layered configuration loader:
// defaults, overlaid by a global config file, overlaid by a project config
// file, overlaid by explicit CLI flags.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/coriolis-dev/shdrift/internal/learn"
	"github.com/coriolis-dev/shdrift/internal/settings"
	"github.com/coriolis-dev/shdrift/internal/tuner"
)

// SnapshotFileName is the effective-config snapshot written alongside the
// persisted vocabulary/association/observation files on every run, so a
// later run (or a human) can see exactly what configuration produced them.
const SnapshotFileName = "config.snapshot.json"

// ProjectConfigFileName is the project-local config file name, looked up in
// the working directory.
const ProjectConfigFileName = ".shdrift.jsonc"

// MaxThreads bounds the configurable worker concurrency.
const MaxThreads = 8

// DefaultWorkers is the worker count used absent any override.
const DefaultWorkers = 4

// DefaultScope is the initial scope percentage used absent any override.
const DefaultScope = 35

// DefaultRuntimeSeconds is the per-command runtime budget used absent any
// override.
const DefaultRuntimeSeconds = 2

var errConfigFileNotFound = errors.New("config file not found")

// Config holds every field that can come from a config file or CLI flags.
type Config struct {
	Workers             int     `json:"workers"`
	Length              int     `json:"length"`
	Scope               int     `json:"scope"`
	RuntimeSeconds      int     `json:"runtime_seconds"`      //nolint:tagliatelle
	VocabPath           string  `json:"vocab_path"`           //nolint:tagliatelle
	AssocPath           string  `json:"assoc_path"`           //nolint:tagliatelle
	ObsPath             string  `json:"obs_path"`             //nolint:tagliatelle
	RedundancyThreshold float64 `json:"redundancy_threshold"` //nolint:tagliatelle
	Reward              int     `json:"reward"`
	Penalty             int     `json:"penalty"`
	TunerIntervalMillis int     `json:"tuner_interval_millis"` //nolint:tagliatelle
}

// Default returns the built-in defaults, the bottom of the precedence
// chain.
func Default() Config {
	return Config{
		Workers:             DefaultWorkers,
		Length:              3,
		Scope:               DefaultScope,
		RuntimeSeconds:      DefaultRuntimeSeconds,
		VocabPath:           filepath.Join(".shdrift", "vocab.txt"),
		AssocPath:           filepath.Join(".shdrift", "assoc.txt"),
		ObsPath:             filepath.Join(".shdrift", "obs.txt"),
		RedundancyThreshold: learn.DefaultRedundancyThreshold,
		Reward:              learn.DefaultReward,
		Penalty:             learn.DefaultPenalty,
		TunerIntervalMillis: int(tuner.DefaultInterval.Milliseconds()),
	}
}

// Overrides carries the subset of fields explicitly set on the command
// line; a nil field means "not set", matching pflag's Changed() semantics
// used by the caller.
type Overrides struct {
	Workers        *int
	Length         *int
	Scope          *int
	RuntimeSeconds *int
	VocabPath      *string
	AssocPath      *string
	ObsPath        *string
}

// Load resolves the layered configuration: defaults, then the global config
// file, then the project config file (or explicitPath if non-empty), then
// overrides. workDir is where the project config file and relative paths
// are resolved against.
func Load(workDir, explicitPath string, overrides Overrides) (Config, error) {
	cfg := Default()

	globalCfg, err := loadGlobalConfig()
	if err != nil {
		return Config{}, err
	}

	cfg = merge(cfg, globalCfg)

	projectCfg, err := loadProjectConfig(workDir, explicitPath)
	if err != nil {
		return Config{}, err
	}

	cfg = merge(cfg, projectCfg)

	cfg = applyOverrides(cfg, overrides)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SaveSnapshot writes the effective, fully-resolved configuration as a
// single JSON file in dir, durably (temp file + rename) via natefinch/atomic.
// Unlike the vocabulary/association/observation dumps in internal/persist,
// this is one small file with no custom text encoding, so the plain
// replace-file-atomically helper fits better than the fsync+directory-fsync
// abstraction internal/osfs provides for the larger persisted files.
func SaveSnapshot(dir string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config snapshot: %w", err)
	}

	path := filepath.Join(dir, SnapshotFileName)

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write config snapshot %q: %w", path, err)
	}

	return nil
}

func loadGlobalConfig() (Config, error) {
	path := globalConfigPath()
	if path == "" {
		return Config{}, nil
	}

	cfg, found, err := loadConfigFile(path, false)
	if err != nil {
		return Config{}, err
	}

	if !found {
		return Config{}, nil
	}

	return cfg, nil
}

func globalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shdrift", "config.jsonc")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "shdrift", "config.jsonc")
}

func loadProjectConfig(workDir, explicitPath string) (Config, error) {
	path := explicitPath
	mustExist := explicitPath != ""

	if path == "" {
		path = filepath.Join(workDir, ProjectConfigFileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	cfg, found, err := loadConfigFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}

	if !found {
		return Config{}, nil
	}

	return cfg, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}

			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("read config %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("invalid JSONC in %q: %w", path, err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return cfg, true, nil
}

// merge overlays every non-zero field of overlay onto base.
func merge(base, overlay Config) Config {
	if overlay.Workers != 0 {
		base.Workers = overlay.Workers
	}

	if overlay.Length != 0 {
		base.Length = overlay.Length
	}

	if overlay.Scope != 0 {
		base.Scope = overlay.Scope
	}

	if overlay.RuntimeSeconds != 0 {
		base.RuntimeSeconds = overlay.RuntimeSeconds
	}

	if overlay.VocabPath != "" {
		base.VocabPath = overlay.VocabPath
	}

	if overlay.AssocPath != "" {
		base.AssocPath = overlay.AssocPath
	}

	if overlay.ObsPath != "" {
		base.ObsPath = overlay.ObsPath
	}

	if overlay.RedundancyThreshold != 0 {
		base.RedundancyThreshold = overlay.RedundancyThreshold
	}

	if overlay.Reward != 0 {
		base.Reward = overlay.Reward
	}

	if overlay.Penalty != 0 {
		base.Penalty = overlay.Penalty
	}

	if overlay.TunerIntervalMillis != 0 {
		base.TunerIntervalMillis = overlay.TunerIntervalMillis
	}

	return base
}

func applyOverrides(cfg Config, o Overrides) Config {
	if o.Workers != nil {
		cfg.Workers = *o.Workers
	}

	if o.Length != nil {
		cfg.Length = *o.Length
	}

	if o.Scope != nil {
		cfg.Scope = *o.Scope
	}

	if o.RuntimeSeconds != nil {
		cfg.RuntimeSeconds = *o.RuntimeSeconds
	}

	if o.VocabPath != nil {
		cfg.VocabPath = *o.VocabPath
	}

	if o.AssocPath != nil {
		cfg.AssocPath = *o.AssocPath
	}

	if o.ObsPath != nil {
		cfg.ObsPath = *o.ObsPath
	}

	return cfg
}

func validate(cfg Config) error {
	if cfg.Workers < 1 || cfg.Workers > MaxThreads {
		return fmt.Errorf("workers must be in [1,%d], got %d", MaxThreads, cfg.Workers)
	}

	if cfg.Length < settings.CmdMin || cfg.Length > settings.CmdMax {
		return fmt.Errorf("length must be in [%d,%d], got %d", settings.CmdMin, settings.CmdMax, cfg.Length)
	}

	if cfg.Scope < settings.SearchScopeMin || cfg.Scope > settings.SearchScopeMax {
		return fmt.Errorf("scope must be in [%d,%d], got %d", settings.SearchScopeMin, settings.SearchScopeMax, cfg.Scope)
	}

	if cfg.RuntimeSeconds < 1 {
		return fmt.Errorf("runtime_seconds must be >= 1, got %d", cfg.RuntimeSeconds)
	}

	return nil
}
