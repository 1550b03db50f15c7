// Package jdb is the jail database: the index of known jails, their
// configuration documents and the snapshot of jails the OS reports as
// running, all behind a single Database.
package jdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fifo-tools/jadm/pkg/jails"
	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/sirupsen/logrus"
)

var jdbLog = logrus.WithField("source", "jdb")

// Option configures Open.
type Option func(*options)

type options struct {
	lock bool
}

// WithLock makes Open take an exclusive lock on the config directory,
// held until Close.
func WithLock() Option {
	return func(o *options) {
		o.lock = true
	}
}

// Database composes the index, the config documents and the live OS jail
// snapshot taken when it was opened.
type Database struct {
	settings types.Settings
	index    *IndexStore
	configs  *ConfigStore
	running  map[string]types.JailOSEntry
	unlock   func() error
}

// Open loads the index of settings.ConfDir, creating it if needed, and
// asks inspector for the running jails.
func Open(ctx context.Context, settings types.Settings, inspector jails.Inspector, opts ...Option) (*Database, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db := &Database{
		settings: settings,
		configs:  NewConfigStore(settings.ConfDir),
	}

	if o.lock {
		unlock, err := lockDir(ctx, settings.ConfDir)
		if err != nil {
			return nil, err
		}
		db.unlock = unlock
	}

	var err error
	if db.index, err = OpenIndex(settings.ConfDir); err != nil {
		db.Close()
		return nil, err
	}
	if db.running, err = inspector.List(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the directory lock, if any.
func (db *Database) Close() error {
	if db.unlock == nil {
		return nil
	}
	unlock := db.unlock
	db.unlock = nil
	return unlock()
}

// Root is the dataset backing the jail uuid.
func (db *Database) Root(uuid string) string {
	return db.settings.Pool + "/" + uuid
}

// Insert indexes config as a new jail in the installing state and writes
// its config document.
func (db *Database) Insert(config types.JailConfig) (types.IndexEntry, error) {
	log := jdbLog.WithField("vm", config.UUID)
	log.Debug("Inserting new vm")

	if config.UUID == "" {
		return types.IndexEntry{}, fmt.Errorf("jail config has no uuid")
	}
	if db.index.Find(config.UUID) >= 0 {
		log.Warnf("Duplicate entry %s", config.UUID)
		return types.IndexEntry{}, fmt.Errorf("%w: %s", ErrConflict, config.UUID)
	}

	entry := types.IndexEntry{
		Version:  types.IndexVersion,
		UUID:     config.UUID,
		Root:     db.Root(config.UUID),
		State:    types.StateInstalling,
		JailType: types.JailTypeBase,
	}

	db.index.add(entry)
	if err := db.configs.Write(config); err != nil {
		db.index.delete(db.index.Find(config.UUID))
		return types.IndexEntry{}, err
	}
	if err := db.index.Save(); err != nil {
		db.index.delete(db.index.Find(config.UUID))
		if rmErr := db.configs.Remove(config.UUID); rmErr != nil {
			log.WithError(rmErr).Error("failed to remove config of unsaved jail")
		}
		return types.IndexEntry{}, err
	}
	return entry, nil
}

// Remove deletes the config document of uuid and then its index entry.
// If the document cannot be deleted the index is left untouched. A
// document that is already gone counts as deleted.
func (db *Database) Remove(uuid string) error {
	log := jdbLog.WithField("vm", uuid)
	log.Debug("Removing vm")
	i := db.index.Find(uuid)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if err := db.configs.Remove(uuid); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		log.Warn("config document already missing")
	}
	db.index.delete(i)
	return db.index.Save()
}

// Get composes the index entry of uuid with whatever the OS reported for
// it. The configuration is not loaded. It returns false when uuid is not
// indexed, regardless of the OS state.
func (db *Database) Get(uuid string) (*jails.Jail, bool) {
	i := db.index.Find(uuid)
	if i < 0 {
		return nil, false
	}
	j := &jails.Jail{Idx: db.index.index.Entries[i]}
	if outer, ok := db.running[uuid]; ok {
		j.Outer = &outer
	}
	if inner, ok := db.running[jails.InnerName(uuid)]; ok {
		j.Inner = &inner
	}
	return j, true
}

// Load is Get with the configuration document read in.
func (db *Database) Load(uuid string) (*jails.Jail, error) {
	j, ok := db.Get(uuid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	config, err := db.configs.Read(uuid)
	if err != nil {
		return nil, err
	}
	j.Config = config
	return j, nil
}

// Update replaces the config document of an indexed jail.
func (db *Database) Update(config types.JailConfig) error {
	if db.index.Find(config.UUID) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, config.UUID)
	}
	return db.configs.Write(config)
}

// SetState persists a new lifecycle label for uuid.
func (db *Database) SetState(uuid, state string) error {
	i := db.index.Find(uuid)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	jdbLog.WithFields(logrus.Fields{"vm": uuid, "state": state}).Debug("Setting state")
	db.index.index.Entries[i].State = state
	return db.index.Save()
}

// Entries returns the indexed jails in insertion order.
func (db *Database) Entries() []types.IndexEntry {
	return db.index.Entries()
}

// Print renders every indexed jail as a table row. The state is the live
// one when the OS reports the jail running, otherwise the persisted one.
func (db *Database) Print(w io.Writer) error {
	header := []string{"UUID", "TYPE", "RAM", "STATE", "ID", "ALIAS"}
	data := [][]string{}
	for _, e := range db.index.Entries() {
		j, err := db.Load(e.UUID)
		if err != nil {
			return err
		}
		data = append(data, []string{
			e.UUID,
			"OS",
			tools.FormatMiB(j.Config.MaxPhysicalMemory),
			j.State(),
			strconv.FormatUint(j.ID(), 10),
			j.Config.Alias,
		})
	}
	tools.ShowTable(w, header, data)
	return nil
}
