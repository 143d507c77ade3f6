package cli

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"
)

const highlightStyle = "monokai"

// highlightYAML writes src to w with terminal syntax highlighting.
func highlightYAML(w io.Writer, src string) error {
	lexer := chroma.Coalesce(lexers.Get("YAML"))

	formatterName := "noop"
	switch termenv.ColorProfile() {
	case termenv.TrueColor:
		formatterName = "terminal16m"

	case termenv.ANSI256:
		formatterName = "terminal256"

	case termenv.ANSI:
		formatterName = "terminal8"
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}

	err = formatters.Get(formatterName).Format(w, styles.Get(highlightStyle), iterator)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}

	return nil
}
