// Package engineconfig holds the engine-wide configuration options spec.md
// §6 enumerates (Verbosity, AlwaysEmitCounts, SyncWrites), loadable from a
// TOML file the way the teacher loads its schema TOML, with functional-option
// overrides matching the teacher's internal/apply.Options convention.
package engineconfig

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the engine's runtime configuration (spec.md §6 "Collaborators").
type Config struct {
	// Verbosity gates internal/telemetry's logging: >0 enables Info-level
	// logs, >4 additionally enables per-operator timing spans.
	Verbosity int `toml:"verbosity"`
	// AlwaysEmitCounts is loaded and carried in Config only: no package in
	// this module reads it, so groupby emits a CNT(*) column only when the
	// select clause names one.
	AlwaysEmitCounts bool `toml:"always_emit_counts"`
	// SyncWrites is loaded and carried in Config only: no package in this
	// module reads it, and internal/partition issues no fsync of its own.
	SyncWrites bool `toml:"sync_writes"`
}

// Default returns the zero-value configuration: silent, no forced counts,
// no extra fsyncs.
func Default() Config {
	return Config{}
}

// Option mutates a Config in place, in the teacher's internal/apply.Options
// functional-option style.
type Option func(*Config)

// WithVerbosity overrides Verbosity.
func WithVerbosity(v int) Option { return func(c *Config) { c.Verbosity = v } }

// WithAlwaysEmitCounts overrides AlwaysEmitCounts.
func WithAlwaysEmitCounts(v bool) Option { return func(c *Config) { c.AlwaysEmitCounts = v } }

// WithSyncWrites overrides SyncWrites.
func WithSyncWrites(v bool) Option { return func(c *Config) { c.SyncWrites = v } }

// Load reads a Config from a TOML file at path, then applies opts on top.
func Load(path string, opts ...Option) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("engineconfig: open %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

// Parse decodes a Config from r, then applies opts on top.
func Parse(r io.Reader, opts ...Option) (Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("engineconfig: decode: %w", err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, nil
}

// New builds a Config from Default() plus opts, with no file involved —
// the common case for tests and for callers that set options in code.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
