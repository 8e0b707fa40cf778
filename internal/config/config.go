// Package config loads jsscope.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"jsscope/internal/diag"
)

// FileName is the configuration file looked up from the working directory upwards.
const FileName = "jsscope.toml"

// Config is the decoded jsscope.toml.
type Config struct {
	Analyze Analyze `toml:"analyze"`
	Cache   Cache   `toml:"cache"`
	Lint    Lint    `toml:"lint"`
}

type Analyze struct {
	Module   bool     `toml:"module"`
	Include  []string `toml:"include"`
	Exclude  []string `toml:"exclude"`
	Jobs     int      `toml:"jobs"`
	Validate bool     `toml:"validate"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type Lint struct {
	Globals []string `toml:"globals"`
	Disable []string `toml:"disable"`
	Unused  bool     `toml:"unused"`
}

// Project is a loaded configuration and the directory it applies to.
type Project struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used when no jsscope.toml exists.
func Default() Config {
	return Config{
		Analyze: Analyze{Include: []string{"*.js", "*.mjs", "*.cjs", "*.html"}},
		Cache:   Cache{Enabled: true},
		Lint:    Lint{Unused: true},
	}
}

// Find walks up from startDir looking for jsscope.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest jsscope.toml. Without one it returns
// the defaults rooted at startDir and ok=false.
func Discover(startDir string) (*Project, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			root = startDir
		}
		return &Project{Root: root, Config: Default()}, false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return &Project{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// Load decodes path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("analyze", "jobs") && cfg.Analyze.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [analyze].jobs must not be negative", path)
	}
	if meta.IsDefined("analyze", "include") && len(cfg.Analyze.Include) == 0 {
		return Config{}, fmt.Errorf("%s: [analyze].include must not be empty", path)
	}
	for _, pattern := range append(append([]string(nil), cfg.Analyze.Include...), cfg.Analyze.Exclude...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return Config{}, fmt.Errorf("%s: bad pattern %q: %w", path, pattern, err)
		}
	}
	if _, err := cfg.Lint.DisabledCodes(); err != nil {
		return Config{}, fmt.Errorf("%s: [lint].disable: %w", path, err)
	}
	return cfg, nil
}

// DisabledCodes parses [lint].disable entries such as "LNT4003".
func (l Lint) DisabledCodes() ([]diag.Code, error) {
	codes := make([]diag.Code, 0, len(l.Disable))
	for _, s := range l.Disable {
		code, ok := diag.ParseCode(strings.TrimSpace(s))
		if !ok {
			return nil, fmt.Errorf("unknown code %q", s)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
