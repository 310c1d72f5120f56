// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// Requirement is a single parsed requirement specifier: a package name with
// optional extras, version clauses and an environment marker. Markers are
// carried verbatim; evaluating them is the installer's business.
type Requirement struct {
	Name       string       `json:"name"`
	Extras     []string     `json:"extras,omitempty"`
	Specifiers SpecifierSet `json:"specifiers,omitempty"`
	Marker     string       `json:"marker,omitempty"`
	Comment    string       `json:"-"`
	Line       int          `json:"-"`
}

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)
	extraPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)

	nameSeparators = regexp.MustCompile(`[-_.]+`)
)

// NormalizeName returns the canonical form of a package name: lowercased,
// with runs of "-", "_" and "." collapsed to a single "-". Two names that
// normalize equal refer to the same package.
func NormalizeName(s string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(s), "-")
}

// ParseRequirement parses a single requirement specifier such as
// "uvicorn[standard]>=0.30,<1.0; python_version >= '3.9'".
func ParseRequirement(s string) (*Requirement, error) {
	rest, comment := splitComment(s)
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, InvalidSpecifierError{Input: s, Reason: "empty requirement"}
	}

	rest, marker := splitMarker(rest)

	name := namePattern.FindString(rest)
	if name == "" {
		return nil, InvalidSpecifierError{Input: s, Reason: "missing package name"}
	}
	rest = strings.TrimSpace(rest[len(name):])

	var extras []string
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end == -1 {
			return nil, InvalidExtrasError{Input: s, Reason: "unclosed extras bracket"}
		}

		var err error
		extras, err = parseExtras(s, rest[1:end])
		if err != nil {
			return nil, err
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	// The grammar allows parenthesized version clauses.
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}

	specifiers, err := ParseSpecifierSet(rest)
	if err != nil {
		return nil, err
	}

	return &Requirement{
		Name:       name,
		Extras:     extras,
		Specifiers: specifiers,
		Marker:     marker,
		Comment:    comment,
	}, nil
}

func parseExtras(input, inner string) ([]string, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, InvalidExtrasError{Input: input, Reason: "empty extras list"}
	}

	parts := strings.Split(inner, ",")
	extras := make([]string, 0, len(parts))
	for _, part := range parts {
		extra := strings.TrimSpace(part)
		if !extraPattern.MatchString(extra) {
			return nil, InvalidExtrasError{Input: input, Reason: fmt.Sprintf("invalid extra name %q", extra)}
		}
		extras = append(extras, extra)
	}

	return extras, nil
}

// splitComment splits an inline comment off a manifest line. A "#" only
// starts a comment at the beginning of the line or after whitespace.
func splitComment(s string) (rest, comment string) {
	for i, r := range s {
		if r != '#' {
			continue
		}
		if i == 0 || s[i-1] == ' ' || s[i-1] == '\t' {
			return s[:i], strings.TrimSpace(s[i+1:])
		}
	}
	return s, ""
}

func splitMarker(s string) (rest, marker string) {
	if i := strings.Index(s, ";"); i != -1 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// IsPinned reports whether the requirement names exactly one version: a
// single "=="/"===" clause to an exact, non-wildcard version.
func (r *Requirement) IsPinned() bool {
	if len(r.Specifiers) != 1 {
		return false
	}

	s := r.Specifiers[0]
	switch s.Op {
	case OpArbitraryEqual:
		return true
	case OpEqual:
		return !strings.HasSuffix(s.Version, ".*")
	default:
		return false
	}
}

// Matches reports whether the given version satisfies the requirement's
// version clauses.
func (r *Requirement) Matches(v Version) bool {
	return r.Specifiers.Match(v)
}

// String renders the requirement in canonical form:
// name[extra1,extra2]>=1.0,<2.0; marker
func (r *Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)

	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}

	b.WriteString(r.Specifiers.String())

	if r.Marker != "" {
		b.WriteString("; ")
		b.WriteString(r.Marker)
	}

	return b.String()
}
