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

// IndexFile is the name of the index document inside the config directory.
const IndexFile = "index"

// IndexStore holds the index document in memory and persists it as a
// whole.
type IndexStore struct {
	path  string
	index types.Index
}

// OpenIndex loads the index document of dir. A missing document is
// created empty and saved right away.
func OpenIndex(dir string) (*IndexStore, error) {
	s := &IndexStore{path: filepath.Join(dir, IndexFile)}
	log := jdbLog.WithField("index", s.path)
	log.Debug("Opening jdb")

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("No database found creating new one.")
		s.index = types.Index{Version: types.IndexVersion, Entries: []types.IndexEntry{}}
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	if err := json.Unmarshal(data, &s.index); err != nil {
		return nil, &DecodeError{Path: s.path, Err: err}
	}
	if s.index.Entries == nil {
		s.index.Entries = []types.IndexEntry{}
	}
	log.Debugf("Found %d entries", len(s.index.Entries))
	return s, nil
}

// Save atomically replaces the index document with the in-memory state.
func (s *IndexStore) Save() error {
	jdbLog.WithField("index", s.path).Debug("Saving database")
	data, err := json.Marshal(s.index)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := atomicwriter.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// Find returns the position of uuid in the index, or -1.
func (s *IndexStore) Find(uuid string) int {
	for i, e := range s.index.Entries {
		if e.UUID == uuid {
			return i
		}
	}
	return -1
}

// Entries returns a copy of the indexed entries in insertion order.
func (s *IndexStore) Entries() []types.IndexEntry {
	res := make([]types.IndexEntry, len(s.index.Entries))
	copy(res, s.index.Entries)
	return res
}

func (s *IndexStore) add(e types.IndexEntry) {
	s.index.Entries = append(s.index.Entries, e)
}

func (s *IndexStore) delete(i int) {
	s.index.Entries = append(s.index.Entries[:i], s.index.Entries[i+1:]...)
}
