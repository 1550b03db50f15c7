package jdb

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fifo-tools/jadm/pkg/jails"
	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uuidA = "8d3a6e5c-1f3e-4b11-b0ae-8494bb6ecd52"
	uuidB = "0b9c1f0e-7f3a-4c2d-9b1e-2a4f5d6c7e8f"
)

func testSettings(t *testing.T) types.Settings {
	return types.Settings{
		Pool:         "zroot/jails",
		ConfDir:      t.TempDir(),
		DevfsRuleset: 4,
	}
}

func openDB(t *testing.T, settings types.Settings, running ...types.JailOSEntry) *Database {
	t.Helper()
	db, err := Open(context.Background(), settings, jails.NewStaticInspector(running...))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig(uuid string) types.JailConfig {
	return types.JailConfig{
		UUID:              uuid,
		ImageUUID:         "5b8f4a2e-0d1c-4e3f-8a9b-1c2d3e4f5a6b",
		Alias:             "web",
		Hostname:          "web01",
		MaxPhysicalMemory: 1024,
		Brand:             types.DefaultBrand,
	}
}

func TestOpenCreatesIndex(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)
	assert.Empty(t, db.Entries())

	data, err := os.ReadFile(filepath.Join(settings.ConfDir, IndexFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":0,"entries":[]}`, string(data))
}

func TestOpenMalformedIndex(t *testing.T) {
	settings := testSettings(t)
	require.NoError(t, os.WriteFile(filepath.Join(settings.ConfDir, IndexFile), []byte("{nope"), 0644))

	_, err := Open(context.Background(), settings, jails.NewStaticInspector())
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, filepath.Join(settings.ConfDir, IndexFile), decodeErr.Path)
}

func TestOpenInspectorFailure(t *testing.T) {
	_, err := Open(context.Background(), testSettings(t), failingInspector{})
	assert.Error(t, err)
}

type failingInspector struct{}

func (failingInspector) List(ctx context.Context) (map[string]types.JailOSEntry, error) {
	return nil, errors.New("jls: not found")
}

func TestInsertGet(t *testing.T) {
	assert := assert.New(t)
	db := openDB(t, testSettings(t))

	entry, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)
	assert.Equal("zroot/jails/"+uuidA, entry.Root)

	j, ok := db.Get(uuidA)
	require.True(t, ok)
	assert.Equal("zroot/jails/"+uuidA, j.Idx.Root)
	assert.Equal(types.StateInstalling, j.Idx.State)
	assert.Equal(types.StateInstalling, j.State())
	assert.Equal(types.JailTypeBase, j.Idx.JailType)
	assert.Nil(j.Outer)

	_, ok = db.Get(uuidB)
	assert.False(ok)
}

func TestInsertDuplicate(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)

	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)
	_, err = db.Insert(testConfig(uuidA))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, db.Entries(), 1)

	reopened := openDB(t, settings)
	assert.Len(t, reopened.Entries(), 1)
}

func TestInsertWithoutUUID(t *testing.T) {
	db := openDB(t, testSettings(t))
	_, err := db.Insert(testConfig(""))
	assert.Error(t, err)
	assert.Empty(t, db.Entries())
}

func TestInsertConfigWriteFailure(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)

	// a directory in the way of the config document
	require.NoError(t, os.Mkdir(filepath.Join(settings.ConfDir, uuidA+".json"), 0755))
	_, err := db.Insert(testConfig(uuidA))
	assert.Error(t, err)
	assert.Empty(t, db.Entries())
}

func TestRemoveUnknown(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)

	indexPath := filepath.Join(settings.ConfDir, IndexFile)
	before, err := os.ReadFile(indexPath)
	require.NoError(t, err)

	err = db.Remove(uuidB)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemove(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)

	require.NoError(t, db.Remove(uuidA))
	_, ok := db.Get(uuidA)
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(settings.ConfDir, uuidA+".json"))

	reopened := openDB(t, settings)
	assert.Empty(t, reopened.Entries())
}

func TestRemoveMissingConfig(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(settings.ConfDir, uuidA+".json")))

	require.NoError(t, db.Remove(uuidA))
	_, ok := db.Get(uuidA)
	assert.False(t, ok)
}

func TestRemoveConfigFailureKeepsIndex(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)

	// a non-empty directory in place of the config document
	configPath := filepath.Join(settings.ConfDir, uuidA+".json")
	require.NoError(t, os.Remove(configPath))
	require.NoError(t, os.MkdirAll(filepath.Join(configPath, "x"), 0755))

	err = db.Remove(uuidA)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	_, ok := db.Get(uuidA)
	assert.True(t, ok)

	reopened := openDB(t, settings)
	assert.Len(t, reopened.Entries(), 1)
}

func TestNormalizeEmptyNics(t *testing.T) {
	config, err := Normalize(testConfig(uuidA))
	require.NoError(t, err)
	assert.NotNil(t, config.Nics)
	assert.Empty(t, config.Nics)
}

func TestIndexRoundTrip(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)

	uuids := []string{uuidA, uuidB, "2f8e1d3c-5b4a-4c6d-8e7f-9a0b1c2d3e4f"}
	for _, u := range uuids {
		_, err := db.Insert(testConfig(u))
		require.NoError(t, err)
	}
	require.NoError(t, db.SetState(uuidB, types.StateStopped))

	reopened := openDB(t, settings)
	assert.ElementsMatch(t, db.Entries(), reopened.Entries())
}

func TestGetWithRunningJail(t *testing.T) {
	assert := assert.New(t)
	settings := testSettings(t)
	db := openDB(t, settings)
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)

	db = openDB(t, settings,
		types.JailOSEntry{UUID: uuidA, ID: 7},
		types.JailOSEntry{UUID: jails.InnerName(uuidA), ID: 8},
		types.JailOSEntry{UUID: uuidB, ID: 9},
	)
	j, ok := db.Get(uuidA)
	require.True(t, ok)
	require.NotNil(t, j.Outer)
	require.NotNil(t, j.Inner)
	assert.Equal(uint64(7), j.ID())
	assert.Equal(uint64(8), j.Inner.ID)
	assert.Equal(types.StateRunning, j.State())

	// running but not indexed
	_, ok = db.Get(uuidB)
	assert.False(ok)
}

func TestLoadAndUpdate(t *testing.T) {
	assert := assert.New(t)
	db := openDB(t, testSettings(t))
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)

	j, err := db.Load(uuidA)
	require.NoError(t, err)
	assert.Equal(testConfig(uuidA), j.Config)

	config := j.Config
	config.Hostname = "web02"
	require.NoError(t, db.Update(config))
	j, err = db.Load(uuidA)
	require.NoError(t, err)
	assert.Equal("web02", j.Config.Hostname)

	assert.ErrorIs(db.Update(testConfig(uuidB)), ErrNotFound)
	_, err = db.Load(uuidB)
	assert.ErrorIs(err, ErrNotFound)
	assert.ErrorIs(db.SetState(uuidB, types.StateStopped), ErrNotFound)
}

func TestLoadMalformedConfig(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(settings.ConfDir, uuidA+".json"), []byte("[]"), 0644))

	_, err = db.Load(uuidA)
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestPrint(t *testing.T) {
	settings := testSettings(t)
	db := openDB(t, settings)
	_, err := db.Insert(testConfig(uuidA))
	require.NoError(t, err)
	_, err = db.Insert(testConfig(uuidB))
	require.NoError(t, err)

	db = openDB(t, settings, types.JailOSEntry{UUID: uuidB, ID: 12})
	var buf bytes.Buffer
	require.NoError(t, db.Print(&buf))

	out := buf.String()
	assert.Contains(t, out, "UUID")
	assert.Contains(t, out, uuidA)
	assert.Contains(t, out, "installing")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "1GiB")
}

func TestLock(t *testing.T) {
	settings := testSettings(t)
	db, err := Open(context.Background(), settings, jails.NewStaticInspector(), WithLock())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Open(ctx, settings, jails.NewStaticInspector(), WithLock())
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, db.Close())
	again, err := Open(context.Background(), settings, jails.NewStaticInspector(), WithLock())
	require.NoError(t, err)
	assert.NoError(t, again.Close())
	assert.NoError(t, again.Close())
}
