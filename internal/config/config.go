// Package config loads squawk settings from defaults, a .squawk.yaml file,
// SQUAWK_* environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix       = "SQUAWK_"
	ReporterTTY     = "tty"
	ReporterJSON    = "json"
	DefaultReporter = ReporterTTY
)

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configNames = []string{".squawk.yaml", ".squawk.yml"}

// listKeys are split on commas when they come from the environment.
var listKeys = []string{"exclude", "include", "paths", "ignore"}

// Config holds the resolved settings for one invocation.
type Config struct {
	Exclude     []string `koanf:"exclude"`     // rule ids to disable
	Include     []string `koanf:"include"`     // default-disabled rule ids to enable
	Reporter    string   `koanf:"reporter"`    // tty or json
	Concurrency int      `koanf:"concurrency"` // files checked in parallel
	Verbose     bool     `koanf:"verbose"`
	Paths       []string `koanf:"paths"`  // used when no path arguments are given
	Ignore      []string `koanf:"ignore"` // patterns skipped while walking directories

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Load resolves the configuration. cfgFile is an explicit config path and
// may be empty, in which case .squawk.yaml is searched from the working
// directory upward. Only flags that were set on the command line override
// lower layers; flags that are not config keys are ignored.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"exclude":     []string{},
		"include":     []string{},
		"reporter":    DefaultReporter,
		"concurrency": 0,
		"verbose":     false,
		"paths":       []string{},
		"ignore":      []string{},
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = findConfigUpward(cwd)
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: SQUAWK_EXCLUDE=a,b -> exclude: [a b]
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if slices.Contains(listKeys, key) {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || !k.Exists(f.Name) {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values and fills derived defaults.
func (c *Config) Validate() error {
	switch c.Reporter {
	case ReporterTTY, ReporterJSON:
	default:
		return fmt.Errorf("invalid reporter %q (want %s or %s)", c.Reporter, ReporterTTY, ReporterJSON)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("invalid concurrency %d", c.Concurrency)
	}
	if c.Concurrency == 0 {
		c.Concurrency = runtime.NumCPU()
	}
	return nil
}

// findConfigUpward searches startDir and its parents for a config file.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
