// SPDX-License-Identifier: Apache-2.0

package benchreport

import "fmt"

type ParseError struct {
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

type UnknownFieldError struct {
	Row   string
	Field string
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in %q row", e.Field, e.Row)
}

type InvalidModeError struct {
	Mode string
}

func (e InvalidModeError) Error() string {
	return fmt.Sprintf("invalid deployment mode %q, must be one of %q or %q", e.Mode, ModeLocal, ModeRemote)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid report: %s: %s", e.Field, e.Reason)
}
