// Package config loads heapctl run settings from a TOML file.
//
// Example file:
//
//	arena-size = 1048576
//	validate   = true
//	mmap       = false
//	format     = "text"
//
//	[log]
//	level = "debug"
//	file  = "/tmp/heapctl.log"
//	json  = false
package config

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/arenakit/heap/printer"
	"github.com/joshuapare/arenakit/internal/format"
	"github.com/joshuapare/arenakit/internal/logger"
)

// DefaultArenaSize is the arena size used when none is configured.
const DefaultArenaSize = 1 << 20

// Config holds the settings heapctl commands share. Flags override values
// loaded from a file.
type Config struct {
	ArenaSize int    `toml:"arena-size"`
	Validate  bool   `toml:"validate"`
	Mmap      bool   `toml:"mmap"`
	Format    string `toml:"format"`
	Log       Log    `toml:"log"`
}

// Log configures the process logger.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
	JSON  bool   `toml:"json"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		ArenaSize: DefaultArenaSize,
		Format:    string(printer.FormatText),
		Log:       Log{Level: "info"},
	}
}

// Load reads path over the defaults. Keys the file omits keep their default;
// unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Newf("config: %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Check reports the first field that holds an unusable value.
func (c *Config) Check() error {
	if c.ArenaSize <= format.SplitReserve {
		return errors.Newf("arena-size %d must exceed %d bytes", c.ArenaSize, format.SplitReserve)
	}
	if _, err := printer.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
