package yaml

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
)

// StringList is a list of strings that may also be written as a single
// scalar in YAML, e.g. `folders: ~/Downloads`.
type StringList []string

// UnmarshalYAML implements [yaml.BytesUnmarshaler].
func (l *StringList) UnmarshalYAML(b []byte) error {
	var v any

	err := yaml.Unmarshal(b, &v)
	if err != nil {
		return err //nolint:wrapcheck // Keep the original token information.
	}

	switch val := v.(type) {
	case nil:
		*l = nil
	case []any:
		out := make(StringList, 0, len(val))
		for i, item := range val {
			switch item.(type) {
			case map[string]any, []any, nil:
				return fmt.Errorf("item %d: expected a scalar, got %T", i, item)
			}

			out = append(out, fmt.Sprint(item))
		}

		*l = out
	case map[string]any:
		return fmt.Errorf("expected a string or a list of strings, got a mapping")
	default:
		*l = StringList{fmt.Sprint(val)}
	}

	return nil
}

func (StringList) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}
