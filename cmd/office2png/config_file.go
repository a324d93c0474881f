package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	office2png "github.com/officepix/go-office2png"
	"github.com/officepix/go-office2png/internal/fileutil"
	"github.com/officepix/go-office2png/internal/yamlutil"
)

// Sentinel errors for config file loading.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config file")
)

// configDirName is the subdirectory under the user config directory
// where named configs are searched.
const configDirName = "office2png"

// resolveConfigPath turns a config name or path into a file path.
// A value containing a path separator is used as-is. A bare name is
// searched in the working directory, then in the user config
// directory, trying .yaml and .yml suffixes.
func resolveConfigPath(name string) (string, error) {
	if fileutil.IsFilePath(name) {
		if fileutil.FileExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	candidates := configCandidates(name)
	for _, candidate := range candidates {
		if fileutil.FileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s (searched: %s)",
		ErrConfigNotFound, name, strings.Join(candidates, ", "))
}

// configCandidates lists the paths searched for a bare config name.
func configCandidates(name string) []string {
	names := []string{name}
	if filepath.Ext(name) == "" {
		names = append(names, name+".yaml", name+".yml")
	}

	candidates := append([]string(nil), names...)
	if userDir, err := os.UserConfigDir(); err == nil {
		for _, n := range names {
			candidates = append(candidates, filepath.Join(userDir, configDirName, n))
		}
	}
	return candidates
}

// loadConfigFile reads and parses a YAML config file, layered over
// defaults so partial files work.
func loadConfigFile(name string) (*office2png.Config, error) {
	path, err := resolveConfigPath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- resolved config path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	cfg := office2png.DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return &cfg, nil
}
