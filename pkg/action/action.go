package action

import (
	"context"

	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/registry"
)

// Action performs an operation on a file.
//
// Run returns the path of the file after the operation, or an empty string
// if the path did not change.
type Action interface {
	Run(ctx context.Context, path string, attrs filter.Attributes, simulate bool) (string, error)
}

// Registry is the registry type holding action variants.
type Registry = registry.Registry[Action]

// Default holds all built-in actions.
var Default = NewRegistry()

// NewRegistry returns a [Registry] with all built-in actions registered.
func NewRegistry() *Registry {
	r := registry.New[Action]("action")

	registry.Register(r, "move", "dest", moveDoc, newMove)
	registry.Register(r, "copy", "dest", copyDoc, newCopy)
	registry.Register(r, "rename", "name", renameDoc, newRename)
	registry.Register(r, "delete", "", deleteDoc, newDelete)
	registry.Register(r, "trash", "dir", trashDoc, newTrash)
	registry.Register(r, "echo", "msg", echoDoc, newEcho)
	registry.Register(r, "shell", "cmd", shellDoc, newShell)

	return r
}
