package jdb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// SchemaDraft is the JSON Schema dialect the generated schema declares.
const SchemaDraft = "http://json-schema.org/draft-07/schema#"

// Schema reflects the JSON Schema of a jail configuration document.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&types.JailConfig{})
	schema.Version = SchemaDraft
	return schema
}

// ValidateConfig checks a raw configuration document against Schema. All
// violations are reported in the returned error.
func ValidateConfig(data []byte) error {
	schemaBytes, err := json.Marshal(Schema())
	if err != nil {
		return fmt.Errorf("failed to serialize schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var violations *multierror.Error
	for _, desc := range result.Errors() {
		violations = multierror.Append(violations, errors.New(desc.String()))
	}
	return fmt.Errorf("invalid jail config: %w", violations)
}

// DecodeConfig validates and decodes a configuration document and fills
// in the defaults: a fresh UUID when none is given, the default brand and
// an empty NIC list.
// A given UUID is canonicalised to its lower case hyphenated form.
func DecodeConfig(data []byte) (types.JailConfig, error) {
	var config types.JailConfig
	if err := ValidateConfig(data); err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to decode jail config: %w", err)
	}
	return Normalize(config)
}

// Normalize applies the configuration defaults in place of missing values.
func Normalize(config types.JailConfig) (types.JailConfig, error) {
	if config.UUID == "" {
		config.UUID = uuid.New().String()
	} else {
		id, err := uuid.Parse(config.UUID)
		if err != nil {
			return config, fmt.Errorf("invalid jail uuid %q: %w", config.UUID, err)
		}
		config.UUID = id.String()
	}
	if config.Brand == "" {
		config.Brand = types.DefaultBrand
	}
	if config.Nics == nil {
		config.Nics = []types.NIC{}
	}
	return config, nil
}
