package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/fifo-tools/jadm/pkg/types"
)

const (
	defaultPool         = "zroot/jails"
	defaultConfDir      = "/usr/local/etc/jails"
	defaultDevfsRuleset = 4
	defaultBrandRoot    = "/usr/local/lib/jadm/brands"
)

// Load reads jadm settings following a defined priority order:
//  1. If the JADM_CONFIG environment variable is set, that file is the
//     sole source and must exist.
//  2. Otherwise the first existing file among "/usr/local/etc/jadm.toml"
//     and "/etc/jadm.toml" is used.
//  3. If no file is found, the built-in defaults are used.
//
// Keys missing from the file keep their default value. The configuration
// directory is created if it does not exist.
func Load() (settings types.Settings, err error) {
	var confPaths []string
	if env := os.Getenv("JADM_CONFIG"); env != "" {
		confPaths = append(confPaths, env)
		if _, err = os.Stat(env); err != nil {
			return settings, fmt.Errorf("config file from JADM_CONFIG: %w", err)
		}
	} else {
		confPaths = append(confPaths, filepath.Join("/", "usr", "local", "etc", "jadm.toml"))
		confPaths = append(confPaths, filepath.Join("/", "etc", "jadm.toml"))
	}

	settings = Defaults()
	for _, confPath := range confPaths {
		if _, statErr := os.Stat(confPath); statErr == nil {
			settings, err = Read(confPath)
			if err != nil {
				return
			}
			break
		}
	}

	if _, statErr := os.Stat(settings.ConfDir); os.IsNotExist(statErr) {
		if err = os.MkdirAll(settings.ConfDir, 0755); err != nil {
			return settings, fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return
}

// Defaults returns the built-in settings.
func Defaults() types.Settings {
	return types.Settings{
		Pool:         defaultPool,
		ConfDir:      defaultConfDir,
		DevfsRuleset: defaultDevfsRuleset,
		BrandRoot:    defaultBrandRoot,
		NicTags:      map[string]string{},
	}
}

// Read parses the TOML file at path on top of the defaults.
func Read(path string) (settings types.Settings, err error) {
	settings = Defaults()
	md, err := toml.DecodeFile(path, &settings)
	if err != nil {
		return settings, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return settings, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	if settings.NicTags == nil {
		settings.NicTags = map[string]string{}
	}
	return
}
