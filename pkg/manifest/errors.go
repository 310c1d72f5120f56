// SPDX-License-Identifier: Apache-2.0

package manifest

import "fmt"

type InvalidSpecifierError struct {
	Line   int
	Input  string
	Reason string
}

func (e InvalidSpecifierError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: invalid requirement specifier %q: %s", e.Line, e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid requirement specifier %q: %s", e.Input, e.Reason)
}

type InvalidVersionError struct {
	Version string
	Reason  string
}

func (e InvalidVersionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid version %q", e.Version)
	}
	return fmt.Sprintf("invalid version %q: %s", e.Version, e.Reason)
}

type InvalidExtrasError struct {
	Input  string
	Reason string
}

func (e InvalidExtrasError) Error() string {
	return fmt.Sprintf("invalid extras in %q: %s", e.Input, e.Reason)
}

type UnknownOperatorError struct {
	Operator string
}

func (e UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown version comparison operator %q", e.Operator)
}

type DuplicateRequirementError struct {
	Name  string
	Lines []int
}

func (e DuplicateRequirementError) Error() string {
	return fmt.Sprintf("requirement %q appears on multiple lines %v", e.Name, e.Lines)
}

type IncludeCycleError struct {
	Path []string
}

func (e IncludeCycleError) Error() string {
	return fmt.Sprintf("requirement files include each other: %v", e.Path)
}
