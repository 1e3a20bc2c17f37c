// Package config loads puppetcheck settings from .puppetcheck.toml, .env and
// PUPPETCHECK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileName is the project config file searched for upward from the start directory.
const FileName = ".puppetcheck.toml"

// Output formats.
const (
	FormatText  = "text"
	FormatSARIF = "sarif"
)

// Color modes.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// Config is the full set of run options.
type Config struct {
	Style          bool      `toml:"style"`
	FutureParser   bool      `toml:"future_parser"`
	PuppetLintArgs []string  `toml:"puppetlint_args"`
	RubocopArgs    []string  `toml:"rubocop_args"`
	Jobs           int       `toml:"jobs"`
	Format         string    `toml:"format"`
	Color          string    `toml:"color"`
	Discovery      Discovery `toml:"discovery"`

	// Path is the config file that was loaded, if any.
	Path string `toml:"-"`
}

// Discovery holds directory traversal options.
type Discovery struct {
	IncludeHidden  bool     `toml:"include_hidden"`
	FollowSymlinks bool     `toml:"follow_symlinks"`
	Exclude        []string `toml:"exclude"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Jobs:   1,
		Format: FormatText,
		Color:  ColorAuto,
	}
}

// Load builds a Config for startDir: defaults, then the nearest
// .puppetcheck.toml, then .env in startDir, then the process environment.
// The result is not validated; callers apply their own overrides and then
// call Validate.
func Load(startDir string) (Config, error) {
	cfg := Default()

	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if ok {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
		cfg.Path = path
	}

	envFile := filepath.Join(startDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
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

func decodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	bools := []struct {
		key string
		dst *bool
	}{
		{"PUPPETCHECK_STYLE", &cfg.Style},
		{"PUPPETCHECK_FUTURE_PARSER", &cfg.FutureParser},
		{"PUPPETCHECK_INCLUDE_HIDDEN", &cfg.Discovery.IncludeHidden},
		{"PUPPETCHECK_FOLLOW_SYMLINKS", &cfg.Discovery.FollowSymlinks},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	lists := []struct {
		key string
		dst *[]string
	}{
		{"PUPPETCHECK_PUPPETLINT_ARGS", &cfg.PuppetLintArgs},
		{"PUPPETCHECK_RUBOCOP_ARGS", &cfg.RubocopArgs},
		{"PUPPETCHECK_EXCLUDE", &cfg.Discovery.Exclude},
	}
	for _, l := range lists {
		if v, ok := lookup(l.key); ok {
			*l.dst = SplitList(v)
		}
	}

	if v, ok := lookup("PUPPETCHECK_JOBS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PUPPETCHECK_JOBS: %w", err)
		}
		cfg.Jobs = n
	}
	if v, ok := lookup("PUPPETCHECK_FORMAT"); ok {
		cfg.Format = strings.TrimSpace(v)
	}
	if v, ok := lookup("PUPPETCHECK_COLOR"); ok {
		cfg.Color = strings.TrimSpace(v)
	}
	return nil
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate rejects unknown enum values and negative job counts.
func (c Config) Validate() error {
	switch c.Format {
	case FormatText, FormatSARIF:
	default:
		return fmt.Errorf("unknown format %q (want text or sarif)", c.Format)
	}
	switch c.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, on or off)", c.Color)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	return nil
}
