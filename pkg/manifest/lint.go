// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"sort"
)

// Severity classifies a lint finding.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Problem is a single lint finding tied to a manifest line.
type Problem struct {
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type lintOptions struct {
	requirePinned bool
}

type LintOption func(*lintOptions)

// WithRequirePinned makes unpinned requirements a lint error. Off by
// default; manifests for test environments commonly float minor versions.
func WithRequirePinned() LintOption {
	return func(o *lintOptions) {
		o.requirePinned = true
	}
}

// Lint checks a parsed manifest for problems beyond syntax: duplicate
// packages, non-canonical name spellings, constraint directives that are
// recorded but never applied and, optionally, unpinned requirements.
// Findings are returned in line order.
func Lint(m *Manifest, opts ...LintOption) []Problem {
	options := &lintOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var problems []Problem

	seen := make(map[string][]int)
	for _, req := range m.Requirements() {
		normalized := NormalizeName(req.Name)
		seen[normalized] = append(seen[normalized], req.Line)

		if req.Name != normalized {
			problems = append(problems, Problem{
				Line:     req.Line,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("name %q is not in canonical form (%q)", req.Name, normalized),
			})
		}

		if options.requirePinned && !req.IsPinned() {
			problems = append(problems, Problem{
				Line:     req.Line,
				Severity: SeverityError,
				Message:  fmt.Sprintf("requirement %q is not pinned to an exact version", req.Name),
			})
		}
	}

	for _, line := range m.Lines {
		opt, ok := line.(*Option)
		if !ok || !opt.IsConstraint() {
			continue
		}
		problems = append(problems, Problem{
			Line:     opt.Line,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("constraints file %q is recorded but its pins are not checked against this manifest", opt.Argument),
		})
	}

	for name, lines := range seen {
		if len(lines) > 1 {
			err := DuplicateRequirementError{Name: name, Lines: lines}
			problems = append(problems, Problem{
				Line:     lines[len(lines)-1],
				Severity: SeverityError,
				Message:  err.Error(),
			})
		}
	}

	sort.Slice(problems, func(i, j int) bool {
		return problems[i].Line < problems[j].Line
	})
	return problems
}
