package registry

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

var ErrInvalidSpec = errors.New("invalid spec")

// Spec is a single configured filter or action, written in YAML either as a
// bare type name or as a single-key mapping from the type name to its
// options:
//
//	- delete
//	- extension: [pdf, docx]
//	- move:
//	    dest: ~/Documents/
//	    overwrite: true
type Spec struct {
	// Options holds the decoded option value: nil, a mapping, or a
	// shorthand scalar/list.
	Options any
	// Type is the registered name of the variant.
	Type string
}

// UnmarshalYAML implements [yaml.BytesUnmarshaler].
func (s *Spec) UnmarshalYAML(b []byte) error {
	var v any

	err := yaml.Unmarshal(b, &v)
	if err != nil {
		return err //nolint:wrapcheck // Keep the original token information.
	}

	switch val := v.(type) {
	case string:
		s.Type = val
		s.Options = nil

	case map[string]any:
		if len(val) != 1 {
			return fmt.Errorf("%w: expected exactly one type key, got %d", ErrInvalidSpec, len(val))
		}

		for k, opts := range val {
			s.Type = k
			s.Options = opts
		}

	default:
		return fmt.Errorf("%w: expected a type name or a mapping, got %T", ErrInvalidSpec, v)
	}

	return nil
}

// MarshalYAML implements [yaml.InterfaceMarshaler].
func (s Spec) MarshalYAML() (any, error) {
	if s.Options == nil {
		return s.Type, nil
	}

	return map[string]any{s.Type: s.Options}, nil
}
