package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/macropower/organize/pkg/action"
	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/registry"
)

const (
	defaultWidth = 80
	maxWidth     = 100
)

// listItem is a registry entry, independent of its value type.
type listItem struct {
	Name        string
	Description string
	Shorthand   string
	Options     []registry.Option
}

type listStyles struct {
	Heading   lipgloss.Style
	Name      lipgloss.Style
	Option    lipgloss.Style
	Shorthand lipgloss.Style
	Faint     lipgloss.Style
}

func newListStyles(w io.Writer) listStyles {
	r := lipgloss.NewRenderer(w)

	return listStyles{
		Heading:   r.NewStyle().Bold(true).Underline(true),
		Name:      r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}),
		Option:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008B8B", Dark: "#00CED1"}),
		Shorthand: r.NewStyle().Italic(true),
		Faint:     r.NewStyle().Faint(true),
	}
}

func NewListCmd(_ *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [type]",
		Short: "List the available filters and actions",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}

			var completions []cobra.Completion
			for _, e := range filter.Default.Entries() {
				completions = append(completions, cobra.CompletionWithDesc(e.Name, e.Description))
			}
			for _, e := range action.Default.Entries() {
				completions = append(completions, cobra.CompletionWithDesc(e.Name, e.Description))
			}

			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			styles := newListStyles(out)
			width := min(terminalWidth(out, defaultWidth), maxWidth)

			if len(args) == 1 {
				return listOne(out, styles, width, args[0])
			}

			writeSection(out, styles, width, "Filters", itemsOf(filter.Default))
			mustN(fmt.Fprintln(out))
			writeSection(out, styles, width, "Actions", itemsOf(action.Default))

			return nil
		},
	}

	return cmd
}

// listOne prints the filters and actions registered as name.
func listOne(w io.Writer, styles listStyles, width int, name string) error {
	var found bool

	fe, ferr := filter.Default.Get(name)
	if ferr == nil {
		writeSection(w, styles, width, "Filter", []listItem{itemOf(fe)})
		found = true
	}

	ae, aerr := action.Default.Get(name)
	if aerr == nil {
		if found {
			mustN(fmt.Fprintln(w))
		}
		writeSection(w, styles, width, "Action", []listItem{itemOf(ae)})
		found = true
	}

	if !found {
		return errors.Join(ferr, aerr)
	}

	return nil
}

func itemsOf[T any](r *registry.Registry[T]) []listItem {
	entries := r.Entries()

	items := make([]listItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, itemOf(e))
	}

	return items
}

func itemOf[T any](e *registry.Entry[T]) listItem {
	return listItem{
		Name:        e.Name,
		Description: e.Description,
		Shorthand:   e.Shorthand,
		Options:     e.Options(),
	}
}

func writeSection(w io.Writer, styles listStyles, width int, title string, items []listItem) {
	mustN(fmt.Fprintln(w, styles.Heading.Render(title)))

	for _, item := range items {
		mustN(fmt.Fprintln(w))
		mustN(fmt.Fprintln(w, "  "+styles.Name.Render(item.Name)))
		mustN(fmt.Fprintln(w, wrap(item.Description, width, 4)))

		for _, opt := range item.Options {
			var sb strings.Builder
			sb.WriteString(styles.Option.Render(opt.Name))
			if opt.Shorthand {
				sb.WriteString(" " + styles.Shorthand.Render("(shorthand)"))
			}
			if opt.Description != "" {
				sb.WriteString(styles.Faint.Render(": " + opt.Description))
			}

			mustN(fmt.Fprintln(w, wrap(sb.String(), width, 6)))
		}
	}
}

// wrap word-wraps s to fit width once indented by n spaces.
func wrap(s string, width int, n uint) string {
	return indent.String(wordwrap.String(s, width-int(n)), n) //nolint:gosec // G115: n is small.
}
