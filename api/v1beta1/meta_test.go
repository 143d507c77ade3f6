package v1beta1_test

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/organize/api/v1beta1"
)

func TestTypeMeta_Check(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		meta v1beta1.TypeMeta
		err  error
	}{
		"valid": {
			meta: v1beta1.TypeMeta{APIVersion: v1beta1.APIVersion, Kind: "Configuration"},
		},
		"unknown api version": {
			meta: v1beta1.TypeMeta{APIVersion: "organize.macropower.dev/v1", Kind: "Configuration"},
			err:  v1beta1.ErrUnsupportedAPIVersion,
		},
		"unknown kind": {
			meta: v1beta1.TypeMeta{APIVersion: v1beta1.APIVersion, Kind: "Rules"},
			err:  v1beta1.ErrUnsupportedKind,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.meta.Check("Configuration")
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, v1beta1.APIVersion, tc.meta.GetAPIVersion())
			assert.Equal(t, "Configuration", tc.meta.GetKind())
		})
	}
}

func TestExtendSchema(t *testing.T) {
	t.Parallel()

	jss := &jsonschema.Schema{Properties: jsonschema.NewProperties()}
	jss.Properties.Set("apiVersion", &jsonschema.Schema{Type: "string"})
	jss.Properties.Set("kind", &jsonschema.Schema{Type: "string"})

	v1beta1.ExtendSchema(jss, "Configuration", "Other")

	apiVersion, ok := jss.Properties.Get("apiVersion")
	require.True(t, ok)
	assert.Equal(t, []any{v1beta1.APIVersion}, apiVersion.Enum)

	kind, ok := jss.Properties.Get("kind")
	require.True(t, ok)
	assert.Equal(t, []any{"Configuration", "Other"}, kind.Enum)
}

func TestExtendSchema_PanicsWithoutKind(t *testing.T) {
	t.Parallel()

	jss := &jsonschema.Schema{Properties: jsonschema.NewProperties()}
	jss.Properties.Set("apiVersion", &jsonschema.Schema{Type: "string"})

	assert.Panics(t, func() {
		v1beta1.ExtendSchema(jss, "Configuration")
	})
}
