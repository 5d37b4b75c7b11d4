package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"output":     "output.path",
	"indent":     "output.indent",
	"jobs":       "decompile.jobs",
	"keep-going": "decompile.keep_going",
	"max-steps":  "decompile.max_steps",
	"cache-dir":  "cache.dir",
	"ui":         "ui",
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an explicit config path. When empty, FileName is searched
	// for from StartDir upwards.
	File     string
	StartDir string
	// Flags contributes only flags the user actually set.
	Flags *pflag.FlagSet
}

// Load merges every source into a validated Config.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := opts.File
	if path == "" {
		found, ok, err := FindFile(opts.StartDir)
		if err != nil {
			return nil, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), tomlParser{}); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagValue(opts.Flags)), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return &cfg, nil
}

// envKey turns SIERRADEC_DECOMPILE_KEEP_GOING into decompile.keep_going:
// the first segment names the section, the rest is the key.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if section, rest, ok := strings.Cut(key, "_"); ok {
		return section + "." + rest
	}
	return key
}

func flagValue(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		if f.Name == "no-cache" {
			off, err := fs.GetBool("no-cache")
			if err != nil {
				return "", nil
			}
			return "cache.enabled", !off
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// FindFile walks up from startDir looking for FileName.
func FindFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve %q: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Encode renders cfg as TOML, the format Load reads back.
func Encode(cfg *Config) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{
		"output.path":          cfg.Output.Path,
		"output.indent":        cfg.Output.Indent,
		"decompile.jobs":       cfg.Decompile.Jobs,
		"decompile.keep_going": cfg.Decompile.KeepGoing,
		"decompile.max_steps":  cfg.Decompile.MaxSteps,
		"cache.enabled":        cfg.Cache.Enabled,
		"cache.dir":            cfg.Cache.Dir,
		"ui":                   cfg.UI,
	}, "."), nil); err != nil {
		return nil, err
	}
	return k.Marshal(tomlParser{})
}
