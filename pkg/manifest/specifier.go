// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"strconv"
	"strings"
)

// Operator is a version comparison operator as accepted by the package
// installer that consumes the manifest.
type Operator string

const (
	OpCompatible     Operator = "~="
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpLessEqual      Operator = "<="
	OpGreaterEqual   Operator = ">="
	OpLess           Operator = "<"
	OpGreater        Operator = ">"
	OpArbitraryEqual Operator = "==="
)

// operators in match order: longer operators first so that "===" is not
// parsed as "==" followed by "=1.0".
var operators = []Operator{
	OpArbitraryEqual,
	OpCompatible,
	OpEqual,
	OpNotEqual,
	OpLessEqual,
	OpGreaterEqual,
	OpLess,
	OpGreater,
}

// Specifier is a single version clause, an operator applied to a version.
type Specifier struct {
	Op      Operator `json:"op"`
	Version string   `json:"version"`
}

// SpecifierSet is a conjunction of comma-separated specifiers. A version
// matches the set if it matches every specifier in it.
type SpecifierSet []Specifier

func leadingOperatorChars(s string) string {
	end := 0
	for end < len(s) && strings.ContainsRune("=<>!~", rune(s[end])) {
		end++
	}
	return s[:end]
}

// ParseSpecifier parses a single version clause such as ">=1.0" or "==2.1.*".
func ParseSpecifier(s string) (Specifier, error) {
	trimmed := strings.TrimSpace(s)

	var op Operator
	for _, candidate := range operators {
		if strings.HasPrefix(trimmed, string(candidate)) {
			op = candidate
			break
		}
	}
	if op == "" {
		// A leading run of operator characters that matched nothing above
		// is an operator the installer grammar does not define, e.g. "=>".
		if run := leadingOperatorChars(trimmed); run != "" {
			return Specifier{}, UnknownOperatorError{Operator: run}
		}
		return Specifier{}, InvalidSpecifierError{Input: s, Reason: "missing version comparison operator"}
	}

	version := strings.TrimSpace(strings.TrimPrefix(trimmed, string(op)))
	if version == "" {
		return Specifier{}, InvalidSpecifierError{Input: s, Reason: "missing version"}
	}

	spec := Specifier{Op: op, Version: version}
	if err := spec.validate(); err != nil {
		return Specifier{}, err
	}

	return spec, nil
}

// validate checks the version clause against the rules of its operator.
func (s Specifier) validate() error {
	// Arbitrary equality compares raw strings, any version text is allowed.
	if s.Op == OpArbitraryEqual {
		return nil
	}

	version := s.Version
	wildcard := strings.HasSuffix(version, ".*")
	if wildcard {
		if s.Op != OpEqual && s.Op != OpNotEqual {
			return InvalidSpecifierError{
				Input:  string(s.Op) + s.Version,
				Reason: "wildcard versions are only allowed with == and !=",
			}
		}
		version = strings.TrimSuffix(version, ".*")
	}

	v, err := ParseVersion(version)
	if err != nil {
		return InvalidSpecifierError{Input: string(s.Op) + s.Version, Reason: err.Error()}
	}

	if v.Local != "" && s.Op != OpEqual && s.Op != OpNotEqual {
		return InvalidSpecifierError{
			Input:  string(s.Op) + s.Version,
			Reason: "local version labels are only allowed with ==, != and ===",
		}
	}

	if wildcard && v.Local != "" {
		return InvalidSpecifierError{
			Input:  string(s.Op) + s.Version,
			Reason: "wildcard versions cannot carry a local version label",
		}
	}

	if s.Op == OpCompatible && len(v.Release) < 2 {
		return InvalidSpecifierError{
			Input:  string(s.Op) + s.Version,
			Reason: "compatible release clauses require at least two release segments",
		}
	}

	return nil
}

// Match reports whether the given version satisfies the clause.
func (s Specifier) Match(v Version) bool {
	switch s.Op {
	case OpArbitraryEqual:
		return v.String() == s.Version
	case OpEqual:
		if strings.HasSuffix(s.Version, ".*") {
			return matchPrefix(v, strings.TrimSuffix(s.Version, ".*"))
		}
		return matchEqual(v, s.Version)
	case OpNotEqual:
		if strings.HasSuffix(s.Version, ".*") {
			return !matchPrefix(v, strings.TrimSuffix(s.Version, ".*"))
		}
		return !matchEqual(v, s.Version)
	case OpCompatible:
		sv := MustParseVersion(s.Version)
		if v.Compare(sv) < 0 {
			return false
		}
		// ~=X.Y.Z is >=X.Y.Z together with ==X.Y.*
		prefix := make([]string, len(sv.Release)-1)
		for i := range prefix {
			prefix[i] = strconv.Itoa(sv.Release[i])
		}
		return matchPrefix(v, prefixWithEpoch(sv.Epoch, strings.Join(prefix, ".")))
	case OpLessEqual:
		return v.Compare(MustParseVersion(s.Version)) <= 0
	case OpGreaterEqual:
		return v.Compare(MustParseVersion(s.Version)) >= 0
	case OpLess:
		return v.Compare(MustParseVersion(s.Version)) < 0
	case OpGreater:
		return v.Compare(MustParseVersion(s.Version)) > 0
	}
	return false
}

// matchEqual compares two versions for equality. The local version label of
// the candidate is ignored unless the clause itself carries one.
func matchEqual(v Version, clause string) bool {
	cv, err := ParseVersion(clause)
	if err != nil {
		return false
	}
	if cv.Local == "" {
		v.Local = ""
	}
	return v.Equal(cv)
}

// matchPrefix reports whether the candidate's release, padded with zeros,
// starts with the release segments of the given prefix version.
func matchPrefix(v Version, prefix string) bool {
	pv, err := ParseVersion(prefix)
	if err != nil {
		return false
	}
	if v.Epoch != pv.Epoch {
		return false
	}
	for i, seg := range pv.Release {
		candidate := 0
		if i < len(v.Release) {
			candidate = v.Release[i]
		}
		if candidate != seg {
			return false
		}
	}
	return true
}

func prefixWithEpoch(epoch int, release string) string {
	if epoch == 0 {
		return release
	}
	return strconv.Itoa(epoch) + "!" + release
}

// ParseSpecifierSet parses a comma-separated conjunction of version clauses.
func ParseSpecifierSet(s string) (SpecifierSet, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}

	var set SpecifierSet
	for _, clause := range strings.Split(trimmed, ",") {
		spec, err := ParseSpecifier(clause)
		if err != nil {
			return nil, err
		}
		set = append(set, spec)
	}

	return set, nil
}

// Match reports whether the version satisfies every clause in the set. An
// empty set matches any version.
func (ss SpecifierSet) Match(v Version) bool {
	for _, s := range ss {
		if !s.Match(v) {
			return false
		}
	}
	return true
}

func (ss SpecifierSet) String() string {
	clauses := make([]string, len(ss))
	for i, s := range ss {
		clauses[i] = string(s.Op) + s.Version
	}
	return strings.Join(clauses, ",")
}
