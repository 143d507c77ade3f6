package action

import (
	"context"

	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/log"
)

const echoDoc = `Logs a message. Useful to try out templates and filters.

Examples:
  - echo: 'Found {{.name}} ({{.filesize.human}})'`

type EchoOptions struct {
	Msg string `json:"msg" jsonschema:"required,description=Message template"`
}

// Echo logs a rendered message.
type Echo struct {
	msg *Template
}

func newEcho(o *EchoOptions) (Action, error) {
	msg, err := NewTemplate("echo", o.Msg)
	if err != nil {
		return nil, err
	}

	return &Echo{msg: msg}, nil
}

func (a *Echo) Run(ctx context.Context, path string, attrs filter.Attributes, _ bool) (string, error) {
	msg, err := a.msg.Render(path, attrs)
	if err != nil {
		return "", err
	}

	log.WithContext(ctx).InfoContext(ctx, msg)

	return "", nil
}
