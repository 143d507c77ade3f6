// Package v1beta1 contains the v1beta1 API types for organize configuration.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all organize configuration kinds.
const APIVersion = "organize.macropower.dev/v1beta1"

var (
	ErrUnsupportedAPIVersion = errors.New("unsupported apiVersion")
	ErrUnsupportedKind       = errors.New("unsupported kind")

	// ValidAPIVersions contains all valid API versions.
	ValidAPIVersions = []string{APIVersion}
)

// TypeMeta identifies the schema of a configuration document.
type TypeMeta struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// GetAPIVersion returns the API version.
func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

// GetKind returns the kind.
func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check returns an error unless the document has a supported API version and
// one of the given kinds.
func (tm TypeMeta) Check(kinds ...string) error {
	if !slices.Contains(ValidAPIVersions, tm.APIVersion) {
		return fmt.Errorf("%w %q, expected one of %v", ErrUnsupportedAPIVersion, tm.APIVersion, ValidAPIVersions)
	}
	if !slices.Contains(kinds, tm.Kind) {
		return fmt.Errorf("%w %q, expected one of %v", ErrUnsupportedKind, tm.Kind, kinds)
	}

	return nil
}

// Object is the interface that all config types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchema restricts the apiVersion and kind properties of jss to
// [ValidAPIVersions] and kinds. It panics if either property is missing.
func ExtendSchema(jss *jsonschema.Schema, kinds ...string) {
	restrict(jss, "apiVersion", ValidAPIVersions)
	restrict(jss, "kind", kinds)
}

func restrict(jss *jsonschema.Schema, name string, values []string) {
	prop, ok := jss.Properties.Get(name)
	if !ok {
		panic(name + " property not found in schema")
	}

	prop.Enum = make([]any, 0, len(values))
	for _, v := range values {
		prop.Enum = append(prop.Enum, v)
	}
}
