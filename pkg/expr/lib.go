package expr

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// `pathBase` returns the last element of the path.
		// Example: pathBase(path).startsWith("IMG_").
		cel.Function("pathBase",
			cel.Overload("path_base", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathBase", filepath.Base)),
			),
		),

		// `pathDir` returns all but the last element of the path.
		// Example: pathDir(path).endsWith("/Downloads").
		cel.Function("pathDir",
			cel.Overload("path_dir", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathDir", filepath.Dir)),
			),
		),

		// `pathExt` returns the file extension of the path, including the dot.
		// Example: pathExt(path) in [".jpg", ".png"].
		cel.Function("pathExt",
			cel.Overload("path_ext", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathExt", filepath.Ext)),
			),
		),

		// `bytes` parses a human-readable size.
		// Example: size > bytes("10 MB").
		cel.Function("bytes",
			cel.Overload("bytes_string", []*cel.Type{cel.StringType}, cel.IntType,
				cel.UnaryBinding(func(size ref.Val) ref.Val {
					s, ok := size.Value().(string)
					if !ok {
						return types.NewErr("bytes: invalid string value")
					}

					n, err := humanize.ParseBytes(s)
					if err != nil {
						return types.NewErr("bytes: %v", err)
					}
					if n > math.MaxInt64 {
						return types.NewErr("bytes: %q out of range", s)
					}

					return types.Int(n) //nolint:gosec // G115: checked above.
				}),
			),
		),

		// `yamlPath` reads a YAML file and extracts a value using a YAML path.
		// Returns null if the file can't be read or the path doesn't exist.
		// Example: pathExt(path) == ".yaml" && yamlPath(path, "$.kind") == "Deployment".
		cel.Function("yamlPath",
			cel.Overload("yaml_path", []*cel.Type{cel.StringType, cel.StringType}, cel.DynType,
				cel.BinaryBinding(func(filePath, yamlPathExpr ref.Val) ref.Val {
					filePathStr, ok := filePath.Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid file path")
					}

					yamlPathStr, ok := yamlPathExpr.Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid yaml path")
					}

					return readYAMLPath(filePathStr, yamlPathStr)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

func stringFunc(name string, fn func(string) string) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val {
		s, ok := v.Value().(string)
		if !ok {
			return types.NewErr("%s: invalid string value", name)
		}

		return types.String(fn(s))
	}
}

//nolint:ireturn // Following CEL's function signature.
func readYAMLPath(filePath, yamlPath string) ref.Val {
	logger := slog.With(
		slog.String("file", filePath),
		slog.String("yamlPath", yamlPath),
	)

	content, err := os.ReadFile(filePath) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		logger.Debug("failed to read YAML file, returning null", slog.Any("error", err))
		return types.NullValue
	}

	path, err := yaml.PathString(yamlPath)
	if err != nil {
		logger.Debug("invalid YAML path, returning null", slog.Any("error", err))
		return types.NullValue
	}

	var value any

	err = path.Read(bytes.NewReader(content), &value)
	if err != nil {
		logger.Debug("failed to extract value from YAML, returning null", slog.Any("error", err))
		return types.NullValue
	}

	return ConvertToCELValue(value)
}

// ConvertToCELValue converts a decoded YAML value to a CEL value.
// Unsupported types become null.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return types.NullValue
	case uint64:
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))
	case []any:
		items := make([]ref.Val, len(v))
		for i, item := range v {
			items[i] = ConvertToCELValue(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, items)
	case map[string]any:
		m := make(map[ref.Val]ref.Val, len(v))
		for key, val := range v {
			m[types.String(key)] = ConvertToCELValue(val)
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, m)
	}

	val := types.DefaultTypeAdapter.NativeToValue(value)
	if types.IsError(val) {
		return types.NullValue
	}

	return val
}
