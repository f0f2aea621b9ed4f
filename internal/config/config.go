// Package config handles intcode.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/akhildatla/intcode/internal/log"
)

// DefaultFile is the configuration file name looked up by the CLI.
const DefaultFile = "intcode.toml"

// Config represents an intcode.toml file.
type Config struct {
	VM  VMConfig  `toml:"vm"`
	Amp AmpConfig `toml:"amp"`
	Log LogConfig `toml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// VMConfig configures each machine.
type VMConfig struct {
	MaxSteps       int64 `toml:"max_steps"`  // 0 = unlimited
	MaxMemory      int   `toml:"max_memory"` // cells, 0 = unlimited
	OutputFallback bool  `toml:"output_fallback"`
}

// AmpConfig configures the feedback-loop search.
type AmpConfig struct {
	Phases []int64 `toml:"phases"`
	Top    int     `toml:"top"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		VM: VMConfig{
			OutputFallback: true,
		},
		Amp: AmpConfig{
			Phases: []int64{5, 6, 7, 8, 9},
			Top:    5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load parses a configuration file over the defaults. Keys absent from
// the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOptional loads path when it exists and returns the defaults when it
// does not.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.VM.MaxSteps < 0 {
		return fmt.Errorf("vm.max_steps must not be negative, got %d", c.VM.MaxSteps)
	}
	if c.VM.MaxMemory < 0 {
		return fmt.Errorf("vm.max_memory must not be negative, got %d", c.VM.MaxMemory)
	}
	if len(c.Amp.Phases) == 0 {
		return errors.New("amp.phases must not be empty")
	}
	seen := make(map[int64]bool, len(c.Amp.Phases))
	for _, p := range c.Amp.Phases {
		if seen[p] {
			return fmt.Errorf("amp.phases: duplicate phase %d", p)
		}
		seen[p] = true
	}
	if c.Amp.Top < 0 {
		return fmt.Errorf("amp.top must not be negative, got %d", c.Amp.Top)
	}
	if !log.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}
