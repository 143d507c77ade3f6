package filter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/macropower/organize/pkg/expr"
)

const exprDoc = `Matches files for which a CEL expression evaluates to true.

Variables:
  path (string), name (string), stem (string), ext (string, with dot),
  dir (string), size (int), modified (timestamp), isDir (bool).

Functions (besides the CEL standard library and the math, strings and lists
extensions):
  pathBase, pathDir, pathExt, bytes("10 MB"), yamlPath(file, "$.path").

Attributes:
  expr: true.

Examples:
  - expr: 'size > bytes("10 MB") && ext == ".iso"'
  - expr: 'modified < now - duration("720h")'`

type ExprOptions struct {
	Expr string `json:"expr" jsonschema:"required,description=CEL expression returning a bool"`
}

// Expr matches files using a CEL predicate.
type Expr struct {
	program cel.Program
}

var exprVariables = []cel.EnvOption{
	cel.Variable("path", cel.StringType),
	cel.Variable("name", cel.StringType),
	cel.Variable("stem", cel.StringType),
	cel.Variable("ext", cel.StringType),
	cel.Variable("dir", cel.StringType),
	cel.Variable("size", cel.IntType),
	cel.Variable("modified", cel.TimestampType),
	cel.Variable("now", cel.TimestampType),
	cel.Variable("isDir", cel.BoolType),
}

func newExpr(o *ExprOptions) (Filter, error) {
	f, err := NewExpr(o.Expr)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewExpr compiles expression into an [Expr] filter.
func NewExpr(expression string) (*Expr, error) {
	if expression == "" {
		return nil, ErrMissingExpr
	}

	env, err := expr.NewEnvironment(exprVariables...)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	program, err := env.Compile(expression)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	return &Expr{program: program}, nil
}

func (f *Expr) Matches(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}

	return expr.EvalBool(f.program, map[string]any{ //nolint:wrapcheck // Already wrapped.
		"path":     path,
		"name":     filepath.Base(path),
		"stem":     stemOf(path),
		"ext":      filepath.Ext(path),
		"dir":      filepath.Dir(path),
		"size":     info.Size(),
		"modified": info.ModTime(),
		"now":      time.Now(),
		"isDir":    info.IsDir(),
	})
}

func (f *Expr) Parse(_ context.Context, _ string) (Attributes, error) {
	return Attributes{"expr": true}, nil
}
