package registry

import (
	"github.com/invopop/jsonschema"
)

// OptionsSchema returns the JSON schema of the entry's options struct.
func (e *Entry[T]) OptionsSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  false,
	}

	s := r.Reflect(e.newOptions())
	s.Version = ""
	s.ID = ""

	return s
}

// Schema returns a JSON schema accepting any [Spec] of the registry.
func (r *Registry[T]) Schema() *jsonschema.Schema {
	names := r.Names()

	bare := make([]any, 0, len(names))
	for _, name := range names {
		bare = append(bare, name)
	}

	oneOf := []*jsonschema.Schema{{
		Type:  "string",
		Enum:  bare,
		Title: "Type Name",
	}}

	for _, e := range r.Entries() {
		value := &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{{Type: "null"}, e.OptionsSchema()},
		}

		if e.Shorthand != "" {
			opts := e.OptionsSchema()
			if prop, ok := opts.Properties.Get(e.Shorthand); ok {
				value.AnyOf = append(value.AnyOf, prop)
			}
		}

		props := jsonschema.NewProperties()
		_, _ = props.Set(e.Name, value)

		oneOf = append(oneOf, &jsonschema.Schema{
			Type:                 "object",
			Title:                e.Name,
			Description:          e.Description,
			Properties:           props,
			Required:             []string{e.Name},
			AdditionalProperties: jsonschema.FalseSchema,
		})
	}

	return &jsonschema.Schema{
		Title: r.kind,
		OneOf: oneOf,
	}
}

// Option documents a single option of an entry.
type Option struct {
	Name        string
	Description string
	Shorthand   bool
}

// Options lists the options of the entry in declaration order.
func (e *Entry[T]) Options() []Option {
	s := e.OptionsSchema()
	if s.Properties == nil {
		return nil
	}

	var opts []Option
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		opts = append(opts, Option{
			Name:        pair.Key,
			Description: pair.Value.Description,
			Shorthand:   pair.Key == e.Shorthand,
		})
	}

	return opts
}
