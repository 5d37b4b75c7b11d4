// Package config resolves sierradec settings from defaults, sierradec.toml,
// SIERRADEC_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"fmt"
	"slices"
)

// FileName is the config file looked up from the working directory upwards.
const FileName = "sierradec.toml"

// EnvPrefix prefixes environment overrides: SIERRADEC_OUTPUT_PATH sets output.path.
const EnvPrefix = "SIERRADEC_"

const (
	DefaultOutput   = "out.cairo_dec"
	DefaultIndent   = 4
	DefaultMaxSteps = 1 << 20
)

// UI modes.
const (
	UIAuto = "auto"
	UIOn   = "on"
	UIOff  = "off"
)

type Config struct {
	Output    OutputConfig    `koanf:"output" toml:"output"`
	Decompile DecompileConfig `koanf:"decompile" toml:"decompile"`
	Cache     CacheConfig     `koanf:"cache" toml:"cache"`
	UI        string          `koanf:"ui" toml:"ui"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-" toml:"-"`
}

type OutputConfig struct {
	Path   string `koanf:"path" toml:"path"` // "-" writes to stdout
	Indent int    `koanf:"indent" toml:"indent"`
}

type DecompileConfig struct {
	Jobs      int  `koanf:"jobs" toml:"jobs"` // 0 means GOMAXPROCS
	KeepGoing bool `koanf:"keep_going" toml:"keep_going"`
	MaxSteps  int  `koanf:"max_steps" toml:"max_steps"`
}

type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"` // empty means $XDG_CACHE_HOME/sierradec
}

func defaults() map[string]any {
	return map[string]any{
		"output.path":          DefaultOutput,
		"output.indent":        DefaultIndent,
		"decompile.jobs":       0,
		"decompile.keep_going": false,
		"decompile.max_steps":  DefaultMaxSteps,
		"cache.enabled":        true,
		"cache.dir":            "",
		"ui":                   UIAuto,
	}
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	switch {
	case c.Output.Path == "":
		return fmt.Errorf("output.path must not be empty")
	case c.Output.Indent < 1 || c.Output.Indent > 16:
		return fmt.Errorf("output.indent must be between 1 and 16, got %d", c.Output.Indent)
	case c.Decompile.Jobs < 0:
		return fmt.Errorf("decompile.jobs must not be negative, got %d", c.Decompile.Jobs)
	case c.Decompile.MaxSteps <= 0:
		return fmt.Errorf("decompile.max_steps must be positive, got %d", c.Decompile.MaxSteps)
	case !slices.Contains([]string{UIAuto, UIOn, UIOff}, c.UI):
		return fmt.Errorf("ui must be auto, on or off, got %q", c.UI)
	}
	return nil
}
