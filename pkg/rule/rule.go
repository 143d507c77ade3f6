package rule

import (
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/macropower/organize/pkg/action"
	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/registry"
	"github.com/macropower/organize/pkg/yaml"
)

var (
	ErrNoFolders = errors.New("at least one folder is required")
	ErrNoActions = errors.New("at least one action is required")
)

// Rule is a compiled rule. It is not modified after being built.
type Rule struct {
	// Name is an optional label used in logs.
	Name    string
	Folders []string
	// Filters must all match for a file to be selected. A rule without
	// filters selects every candidate.
	Filters []filter.Filter
	// Actions run in order on every selected file.
	Actions []action.Action
}

func (r *Rule) String() string {
	if r.Name != "" {
		return r.Name
	}

	return fmt.Sprintf("%v", r.Folders)
}

// Config is the YAML representation of a [Rule].
type Config struct {
	// Enabled can be set to false to skip the rule.
	Enabled *bool `json:"enabled,omitempty" jsonschema:"title=Enabled,default=true"`
	// Name is an optional label used in logs.
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
	// Folders are scanned (non-recursively) for candidate files.
	Folders yaml.StringList `json:"folders" jsonschema:"title=Folders"`
	// Filters select the files the actions apply to.
	Filters []registry.Spec `json:"filters,omitempty" jsonschema:"title=Filters"`
	// Actions run on every selected file.
	Actions []registry.Spec `json:"actions" jsonschema:"title=Actions"`
}

// IsEnabled reports whether the rule should run.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Build compiles the configuration using the given registries. Each call
// returns fresh filter and action instances, so stateful filters are scoped
// to a single rule.
func (c *Config) Build(filters *filter.Registry, actions *action.Registry) (*Rule, error) {
	if len(c.Folders) == 0 {
		return nil, &FieldError{Field: "folders", Index: -1, Err: ErrNoFolders}
	}
	if len(c.Actions) == 0 {
		return nil, &FieldError{Field: "actions", Index: -1, Err: ErrNoActions}
	}

	r := &Rule{
		Name:    c.Name,
		Folders: append([]string(nil), c.Folders...),
		Filters: make([]filter.Filter, 0, len(c.Filters)),
		Actions: make([]action.Action, 0, len(c.Actions)),
	}

	for i, spec := range c.Filters {
		f, err := filters.Build(spec)
		if err != nil {
			return nil, &FieldError{Field: "filters", Index: i, Err: err}
		}

		r.Filters = append(r.Filters, f)
	}

	for i, spec := range c.Actions {
		a, err := actions.Build(spec)
		if err != nil {
			return nil, &FieldError{Field: "actions", Index: i, Err: err}
		}

		r.Actions = append(r.Actions, a)
	}

	return r, nil
}

// JSONSchemaExtend describes filter and action entries with the schemas of
// the default registries.
func (c Config) JSONSchemaExtend(s *jsonschema.Schema) {
	if prop, ok := s.Properties.Get("filters"); ok {
		prop.Items = filter.Default.Schema()
	}
	if prop, ok := s.Properties.Get("actions"); ok {
		prop.Items = action.Default.Schema()
	}
}

// FieldError reports an invalid field of a [Config]. Index is -1 when the
// field as a whole is invalid.
type FieldError struct {
	Err   error
	Field string
	Index int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path(), e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Path returns the YAML path of the field relative to the rule, e.g.
// "filters[2]".
func (e *FieldError) Path() string {
	if e.Index < 0 {
		return e.Field
	}

	return fmt.Sprintf("%s[%d]", e.Field, e.Index)
}
