package filter

import (
	"context"
	"errors"

	"github.com/macropower/organize/pkg/registry"
)

// ErrMissingExpr is returned when a filter requiring an expression has none.
var ErrMissingExpr = errors.New("expr is required")

// Attributes is the bundle of values a [Filter] extracts from a path. It is
// shared read-only by every action of a job.
type Attributes map[string]any

// Filter is a predicate and attribute extractor over file paths.
//
// Neither method may modify the filesystem. Parse may read file content.
type Filter interface {
	Matches(ctx context.Context, path string) (bool, error)
	Parse(ctx context.Context, path string) (Attributes, error)
}

// Registry is the registry type holding filter variants.
type Registry = registry.Registry[Filter]

// Default holds all built-in filters.
var Default = NewRegistry()

// NewRegistry returns a [Registry] with all built-in filters registered.
func NewRegistry() *Registry {
	r := registry.New[Filter]("filter")

	registry.Register(r, "extension", "extensions", extensionDoc, newExtension)
	registry.Register(r, "filename", "match", filenameDoc, newFilename)
	registry.Register(r, "regex", "expr", regexDoc, newRegex)
	registry.Register(r, "filecontent", "expr", fileContentDoc, newFileContent)
	registry.Register(r, "filesize", "conditions", fileSizeDoc, newFileSize)
	registry.Register(r, "lastmodified", "days", lastModifiedDoc, newLastModified)
	registry.Register(r, "duplicate", "", duplicateDoc, newDuplicate)
	registry.Register(r, "expr", "expr", exprDoc, newExpr)
	registry.Register(r, "mimetype", "types", mimeTypeDoc, newMimeType)

	return r
}
