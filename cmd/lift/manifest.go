package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// toolManifest is an optional lift.toml discovered upward from the
// working directory; it supplies default opt options.
type toolManifest struct {
	Path   string
	Root   string
	Config toolConfig
}

type toolConfig struct {
	Opt optConfig `toml:"opt"`
}

type optConfig struct {
	NoLICM   bool `toml:"no-licm"`
	NoVerify bool `toml:"no-verify"`
	EmitIR   bool `toml:"emit-ir"`
	NoStats  bool `toml:"no-stats"`
}

func findLiftToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "lift.toml")
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

func loadToolManifest(startDir string) (*toolManifest, bool, error) {
	path, ok, err := findLiftToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg toolConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &toolManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}
