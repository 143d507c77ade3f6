package filter

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
)

const regexDoc = `Matches the file name (including extension) against a regular expression.

Attributes:
  regex: a map of the named capture groups.

Examples:
  - regex: '^RG(?P<number>\d{12})-sig\.pdf$'`

type RegexOptions struct {
	Expr string `json:"expr" jsonschema:"required,description=Regular expression (RE2 syntax)"`
}

// Regex matches file names against a regular expression.
type Regex struct {
	re *regexp.Regexp
}

func newRegex(o *RegexOptions) (Filter, error) {
	f, err := NewRegex(o.Expr)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewRegex creates a [Regex] filter.
func NewRegex(expr string) (*Regex, error) {
	re, err := compileRegexp(expr)
	if err != nil {
		return nil, err
	}

	return &Regex{re: re}, nil
}

func (f *Regex) Matches(_ context.Context, path string) (bool, error) {
	return f.re.MatchString(filepath.Base(path)), nil
}

func (f *Regex) Parse(_ context.Context, path string) (Attributes, error) {
	return Attributes{"regex": namedGroups(f.re, filepath.Base(path))}, nil
}

func compileRegexp(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, ErrMissingExpr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}

	return re, nil
}

// namedGroups returns the named capture groups of the first match of re in s.
func namedGroups(re *regexp.Regexp, s string) map[string]string {
	groups := map[string]string{}

	m := re.FindStringSubmatch(s)
	if m == nil {
		return groups
	}

	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}

	return groups
}
