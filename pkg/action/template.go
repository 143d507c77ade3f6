package action

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/macropower/organize/pkg/filter"
)

// ErrEmptyTemplate is returned when a required template is empty.
var ErrEmptyTemplate = errors.New("template is empty")

var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"title": func(s string) string { return cases.Title(language.Und).String(s) },
	"quote": shellQuote,
}

// Template is a text template rendered against a job's path and attributes.
//
// Besides the attributes, templates can reference .path, .name (base name),
// .stem (base name without extension), .ext (with dot) and .dir.
type Template struct {
	tmpl *template.Template
	text string
}

// NewTemplate parses text. Referencing a missing key is an error at render
// time.
func NewTemplate(name, text string) (*Template, error) {
	if text == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTemplate)
	}

	tmpl, err := template.New(name).
		Funcs(templateFuncs).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	return &Template{tmpl: tmpl, text: text}, nil
}

// Render executes the template for the file at path.
func (t *Template) Render(path string, attrs filter.Attributes) (string, error) {
	data := make(map[string]any, len(attrs)+5)
	maps.Copy(data, attrs)

	base := filepath.Base(path)
	ext := filepath.Ext(base)

	data["path"] = path
	data["name"] = base
	data["stem"] = strings.TrimSuffix(base, ext)
	data["ext"] = ext
	data["dir"] = filepath.Dir(path)

	var sb strings.Builder

	err := t.tmpl.Execute(&sb, data)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}

	return sb.String(), nil
}

func (t *Template) String() string {
	return t.text
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
