package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema implements jsonschema's custom type hook so type and database_type list
// the supported dialects.
func (DatabaseType) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(Types))
	for i, t := range Types {
		enum[i] = string(t)
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// Schema returns the JSON Schema of the config file, usable by editors to validate and
// complete configs. Unknown properties are rejected, as Load does.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&Config{})
	s.Title = "tabledump configuration"
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode schema: %w", ErrConfig, err)
	}
	return append(data, '\n'), nil
}
