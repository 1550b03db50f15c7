package jdb

import (
	"testing"

	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigDefaults(t *testing.T) {
	assert := assert.New(t)
	config, err := DecodeConfig([]byte(`{
		"image_uuid": "5b8f4a2e-0d1c-4e3f-8a9b-1c2d3e4f5a6b",
		"hostname": "web01",
		"nics": [{"interface": "net0", "nic_tag": "admin", "ip": "dhcp"}]
	}`))
	require.NoError(t, err)

	_, err = uuid.Parse(config.UUID)
	assert.NoError(err)
	assert.Equal(types.DefaultBrand, config.Brand)
	assert.False(config.Autostart)
	require.Len(t, config.Nics, 1)
	assert.Equal("admin", config.Nics[0].NicTag)
}

func TestDecodeConfigKeepsUUID(t *testing.T) {
	config, err := DecodeConfig([]byte(`{
		"uuid": "8d3a6e5c-1f3e-4b11-b0ae-8494bb6ecd52",
		"image_uuid": "5b8f4a2e-0d1c-4e3f-8a9b-1c2d3e4f5a6b",
		"brand": "lx"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "8d3a6e5c-1f3e-4b11-b0ae-8494bb6ecd52", config.UUID)
	assert.Equal(t, "lx", config.Brand)
}

func TestNormalize(t *testing.T) {
	config, err := Normalize(types.JailConfig{UUID: "8D3A6E5C-1F3E-4B11-B0AE-8494BB6ECD52"})
	require.NoError(t, err)
	assert.Equal(t, "8d3a6e5c-1f3e-4b11-b0ae-8494bb6ecd52", config.UUID)

	_, err = Normalize(types.JailConfig{UUID: "web01"})
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{"missing image", `{"hostname": "web01"}`},
		{"wrong type", `{"image_uuid": "5b8f4a2e-0d1c-4e3f-8a9b-1c2d3e4f5a6b", "max_physical_memory": "lots"}`},
		{"unknown field", `{"image_uuid": "5b8f4a2e-0d1c-4e3f-8a9b-1c2d3e4f5a6b", "ram": 5}`},
		{"nic without interface", `{"image_uuid": "5b8f4a2e-0d1c-4e3f-8a9b-1c2d3e4f5a6b", "nics": [{"ip": "dhcp"}]}`},
		{"not json", `{`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeConfig([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestSchema(t *testing.T) {
	schema := Schema()
	assert.Equal(t, SchemaDraft, schema.Version)
	assert.Contains(t, schema.Required, "image_uuid")
	_, ok := schema.Properties.Get("nics")
	assert.True(t, ok)
}
