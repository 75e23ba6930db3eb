package options

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema describes the persisted option record.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}
	s := r.Reflect(&OptionSet{})
	s.Title = "formatto options"
	return json.MarshalIndent(s, "", "  ")
}
