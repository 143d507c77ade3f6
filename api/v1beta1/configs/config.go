// Package configs provides the organize Configuration type.
package configs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	goyaml "github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/organize/api"
	"github.com/macropower/organize/api/v1beta1"
	"github.com/macropower/organize/pkg/action"
	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/rule"
	"github.com/macropower/organize/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/main.go -o configs.v1beta1.json

const (
	// Kind is the kind of organize configuration documents.
	Kind = "Configuration"

	// SchemaFile is the file name the JSON schema is written to.
	SchemaFile = "configs.v1beta1.json"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	// ValidKinds contains the valid kind values for configurations.
	ValidKinds = []string{Kind}

	schemaOnce = sync.OnceValues(generateSchema)

	validatorOnce = sync.OnceValues(func() (*yaml.Validator, error) {
		data, err := Schema()
		if err != nil {
			return nil, err
		}

		return yaml.NewValidator("/"+SchemaFile, data)
	})

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config is the organize configuration document.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	v1beta1.TypeMeta `json:",inline"`

	// Rules are run in order of discovered files, see the engine package.
	Rules []*rule.Config `json:"rules" jsonschema:"title=Rules"`
}

// New creates an empty [Config].
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Rules == nil {
		c.Rules = []*rule.Config{}
	}
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchema(jss, ValidKinds...)
}

// BuildRules compiles every enabled rule using the given registries. Errors
// are [*yaml.Error] values pointing at the offending entry.
func (c *Config) BuildRules(filters *filter.Registry, actions *action.Registry) ([]*rule.Rule, error) {
	err := c.Check(ValidKinds...)
	if err != nil {
		field := "apiVersion"
		if errors.Is(err, v1beta1.ErrUnsupportedKind) {
			field = "kind"
		}

		return nil, yaml.NewError(err, yaml.WithPath(yaml.NewPathBuilder().Root().Child(field).Build()))
	}

	rules := make([]*rule.Rule, 0, len(c.Rules))

	for i, rc := range c.Rules {
		if rc == nil || !rc.IsEnabled() {
			continue
		}

		r, err := rc.Build(filters, actions)
		if err != nil {
			return nil, yaml.NewError(err, yaml.WithPath(rulePath(i, err)))
		}

		rules = append(rules, r)
	}

	return rules, nil
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := yaml.Marshal(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// WriteDefault writes the embedded default config.yaml to path, and the JSON
// schema next to it.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	err = WriteSchema(path)
	if err != nil {
		return err
	}

	return nil
}

// WriteSchema writes the JSON schema into the directory of the config file
// at configPath, replacing any older version.
func WriteSchema(configPath string) error {
	data, err := Schema()
	if err != nil {
		return err
	}

	path := schemaPath(configPath)

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	slog.Debug("write JSON schema", slog.String("path", path))

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}

// DefaultYAML returns the embedded default configuration.
func DefaultYAML() []byte {
	return defaultConfigYAML
}

// GetPath returns the path to the user's configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}

// Schema returns the JSON schema of [Config], including the options of every
// registered filter and action.
func Schema() ([]byte, error) {
	return schemaOnce()
}

// DefaultValidator returns a validator for the [Schema].
func DefaultValidator() (*yaml.Validator, error) {
	return validatorOnce()
}

func generateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	jss := r.Reflect(New())
	jss.ID = "https://github.com/macropower/organize/" + SchemaFile
	jss.Title = "organize configuration"

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}

// rulePath returns the YAML path of the i-th rule, or of the rule's field
// that err refers to.
func rulePath(i int, err error) *goyaml.Path {
	p := yaml.NewPathBuilder().Root().Child("rules").Index(uint(i)) //nolint:gosec // G115: i is never negative.

	var fieldErr *rule.FieldError
	if errors.As(err, &fieldErr) {
		p = p.Child(fieldErr.Field)
		if fieldErr.Index >= 0 {
			p = p.Index(uint(fieldErr.Index))
		}
	}

	return p.Build()
}

func schemaPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), SchemaFile)
}
