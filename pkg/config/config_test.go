package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jadm.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadOverridesDefaults(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, `
pool = "tank/jails"
devfs_ruleset = 10

[nic_tags]
admin = "bridge0"
`)

	settings, err := Read(path)
	require.NoError(t, err)

	assert.Equal("tank/jails", settings.Pool)
	assert.Equal(10, settings.DevfsRuleset)
	assert.Equal(defaultConfDir, settings.ConfDir)
	assert.Equal(defaultBrandRoot, settings.BrandRoot)
	assert.Equal("bridge0", settings.NicTags["admin"])
}

func TestReadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `pol = "typo"`)

	_, err := Read(path)
	assert.Error(t, err)
}

func TestReadRejectsMalformed(t *testing.T) {
	path := writeConfig(t, `pool = `)

	_, err := Read(path)
	assert.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	confDir := filepath.Join(t.TempDir(), "jails")
	path := writeConfig(t, `conf_dir = "`+confDir+`"`)
	t.Setenv("JADM_CONFIG", path)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, confDir, settings.ConfDir)
	assert.DirExists(t, confDir)
}

func TestLoadMissingEnvironmentFile(t *testing.T) {
	t.Setenv("JADM_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load()
	assert.Error(t, err)
}
