package yaml_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/organize/pkg/yaml"
)

func stringReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestNewValidator(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		errMsg     string
		schemaData []byte
		wantErr    bool
	}{
		"valid schema": {
			schemaData: []byte(`{
				"type": "object",
				"properties": {"rules": {"type": "array"}},
				"required": ["rules"]
			}`),
		},
		"invalid json": {
			schemaData: []byte(`{"invalid": json}`),
			wantErr:    true,
			errMsg:     "unmarshal schema",
		},
		"invalid schema": {
			schemaData: []byte(`{"type": "invalid_type"}`),
			wantErr:    true,
			errMsg:     "compile schema",
		},
		"empty schema": {
			schemaData: []byte(`{}`),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			validator, err := yaml.NewValidator("test.json", tc.schemaData)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				assert.Nil(t, validator)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, validator)
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	validator := yaml.MustNewValidator("test.json", []byte(`{
		"type": "object",
		"properties": {
			"rules": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"folders": {"type": "array", "items": {"type": "string"}}
					},
					"required": ["folders"]
				}
			}
		},
		"required": ["rules"]
	}`))

	tcs := map[string]struct {
		data     any
		wantPath string
		wantErr  bool
	}{
		"valid": {
			data: map[string]any{
				"rules": []any{map[string]any{"folders": []any{"~/Downloads"}}},
			},
		},
		"missing rules": {
			data:     map[string]any{},
			wantErr:  true,
			wantPath: "$",
		},
		"wrong folder type": {
			data: map[string]any{
				"rules": []any{map[string]any{"folders": []any{1}}},
			},
			wantErr:  true,
			wantPath: "$.rules[0].folders[0]",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := validator.Validate(tc.data)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			require.NotNil(t, yamlErr.Path)
			assert.Equal(t, tc.wantPath, yamlErr.Path.String())
		})
	}
}
