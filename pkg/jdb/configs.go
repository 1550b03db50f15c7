package jdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/moby/sys/atomicwriter"
)

// ConfigStore keeps one <uuid>.json document per jail.
type ConfigStore struct {
	dir string
}

func NewConfigStore(dir string) *ConfigStore {
	return &ConfigStore{dir: dir}
}

// Path of the config document of uuid.
func (s *ConfigStore) Path(uuid string) string {
	return filepath.Join(s.dir, uuid+".json")
}

func (s *ConfigStore) Read(uuid string) (types.JailConfig, error) {
	var config types.JailConfig
	path := s.Path(uuid)
	jdbLog.WithField("vm", uuid).Debug("Loading vm config")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("%w: no config for %s", ErrNotFound, uuid)
	}
	if err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, &DecodeError{Path: path, Err: err}
	}
	return config, nil
}

// Write creates or atomically replaces the document of config.UUID.
func (s *ConfigStore) Write(config types.JailConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := atomicwriter.WriteFile(s.Path(config.UUID), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (s *ConfigStore) Remove(uuid string) error {
	err := os.Remove(s.Path(uuid))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: no config for %s", ErrNotFound, uuid)
	}
	if err != nil {
		return fmt.Errorf("failed to remove config: %w", err)
	}
	return nil
}
