package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema generates a JSON Schema document for the configuration,
// suitable for editor completion and CI validation of config files.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := r.Reflect(&Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "p4session configuration"
	schema.Description = "Configuration schema for the p4session library"

	return json.MarshalIndent(schema, "", "  ")
}
