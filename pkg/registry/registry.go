package registry

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/macropower/organize/pkg/yaml"
)

var (
	ErrUnknownType = errors.New("unknown type")
	ErrNoShorthand = errors.New("options must be a mapping")
)

// Entry describes one registered variant producing values of type T.
type Entry[T any] struct {
	// newOptions returns a pointer to a zero options struct.
	newOptions func() any
	// build constructs the variant from a decoded options pointer.
	build func(opts any) (T, error)

	// Name is the configuration key of the variant.
	Name string
	// Description is shown by `organize list`.
	Description string
	// Shorthand names the option field that receives a non-mapping value.
	// Empty means only mappings (or no value at all) are accepted.
	Shorthand string
}

// NewOptions returns a pointer to a zero value of the entry's options type.
func (e *Entry[T]) NewOptions() any {
	return e.newOptions()
}

// Registry holds the variants of one kind, e.g. all filters.
type Registry[T any] struct {
	entries map[string]*Entry[T]
	kind    string
}

// New creates an empty [Registry]. Kind is used in error messages.
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[string]*Entry[T]),
	}
}

// Register adds a variant whose options decode into O.
// It panics if name is already registered.
func Register[T, O any](r *Registry[T], name, shorthand, description string, build func(*O) (T, error)) {
	if _, ok := r.entries[name]; ok {
		panic(fmt.Sprintf("%s %q registered twice", r.kind, name))
	}

	r.entries[name] = &Entry[T]{
		Name:        name,
		Description: description,
		Shorthand:   shorthand,
		newOptions:  func() any { return new(O) },
		build: func(opts any) (T, error) {
			o, ok := opts.(*O)
			if !ok {
				var zero T
				return zero, fmt.Errorf("unexpected options type %T", opts)
			}

			return build(o)
		},
	}
}

// Kind returns the kind of values held by the registry.
func (r *Registry[T]) Kind() string {
	return r.kind
}

// Get returns the entry registered under name.
func (r *Registry[T]) Get(name string) (*Entry[T], error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, r.unknown(name)
	}

	return e, nil
}

// Names returns all registered names, sorted.
func (r *Registry[T]) Names() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// Entries returns all entries sorted by name.
func (r *Registry[T]) Entries() []*Entry[T] {
	names := r.Names()

	entries := make([]*Entry[T], 0, len(names))
	for _, name := range names {
		entries = append(entries, r.entries[name])
	}

	return entries
}

// Build validates the options of spec and constructs the variant.
// Unknown option keys and malformed values are rejected.
//
//nolint:ireturn // Returns the registry's value type.
func (r *Registry[T]) Build(spec Spec) (T, error) {
	var zero T

	e, err := r.Get(spec.Type)
	if err != nil {
		return zero, err
	}

	opts, err := e.decodeOptions(spec.Options)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", r.kind, spec.Type, err)
	}

	v, err := e.build(opts)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", r.kind, spec.Type, err)
	}

	return v, nil
}

func (e *Entry[T]) decodeOptions(raw any) (any, error) {
	opts := e.newOptions()

	switch raw.(type) {
	case nil:
		return opts, nil

	case map[string]any:
		// Decode the mapping as-is.

	default:
		if e.Shorthand == "" {
			return nil, fmt.Errorf("%w, got %T", ErrNoShorthand, raw)
		}

		raw = map[string]any{e.Shorthand: raw}
	}

	b, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	err = yaml.NewStrictDecoder(bytes.NewReader(b)).Decode(opts)
	if err != nil {
		// Token positions refer to the re-encoded options, not the
		// configuration document, so keep only the message.
		var yamlErr *yaml.Error
		if errors.As(err, &yamlErr) {
			err = yamlErr.Err
		}

		return nil, fmt.Errorf("decode options: %w", err)
	}

	return opts, nil
}

func (r *Registry[T]) unknown(name string) error {
	err := fmt.Errorf("%w: %s %q", ErrUnknownType, r.kind, name)

	matches := fuzzy.Find(name, r.Names())
	if len(matches) > 0 {
		return fmt.Errorf("%w, did you mean %q?", err, matches[0].Str)
	}

	return err
}
