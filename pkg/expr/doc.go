// Package expr provides CEL (Common Expression Language) functionality
// for evaluating expressions against files.
//
// It creates CEL environments with custom functions for:
//   - File path operations (pathBase, pathDir, pathExt)
//   - YAML content extraction (yamlPath)
//   - Human-readable sizes (bytes)
//
// Variables are declared by the caller, see the `expr` filter.
package expr
