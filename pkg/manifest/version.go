// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a parsed package version as understood by the package installer
// that consumes the manifest: an optional epoch, dotted release segments and
// optional pre-release, post-release, development and local components.
type Version struct {
	Epoch   int
	Release []int
	Pre     *PreRelease
	Post    *int
	Dev     *int
	Local   string

	original string
}

// PreRelease is the pre-release component of a version. The phase is
// normalized to one of "a", "b" or "rc".
type PreRelease struct {
	Phase  string
	Number int
}

var versionPattern = regexp.MustCompile(
	`^v?` +
		`(?:(\d+)!)?` + // epoch
		`(\d+(?:\.\d+)*)` + // release
		`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d*))?` + // pre-release
		`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d*)))?` + // post-release
		`(?:[-_.]?(dev)[-_.]?(\d*))?` + // dev release
		`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?` + // local version label
		`$`)

// ParseVersion parses a version string. Separator and case variants are
// normalized during parsing, so "1.0.0-ALPHA1" parses the same as "1.0.0a1".
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	m := versionPattern.FindStringSubmatch(strings.ToLower(trimmed))
	if m == nil {
		return Version{}, InvalidVersionError{Version: s}
	}

	v := Version{original: trimmed}

	// The pattern admits digit runs of any length, so each numeric segment
	// can still overflow int and must be range checked here.
	var convErr error
	atoi := func(seg string) int {
		n, err := strconv.Atoi(seg)
		if err != nil && convErr == nil {
			convErr = InvalidVersionError{Version: s, Reason: fmt.Sprintf("numeric segment %q out of range", seg)}
		}
		return n
	}
	atoiDefaultZero := func(s string) int {
		if s == "" {
			return 0
		}
		return atoi(s)
	}

	if m[1] != "" {
		v.Epoch = atoi(m[1])
	}

	for _, part := range strings.Split(m[2], ".") {
		v.Release = append(v.Release, atoi(part))
	}

	if m[3] != "" {
		v.Pre = &PreRelease{
			Phase:  normalizePrePhase(m[3]),
			Number: atoiDefaultZero(m[4]),
		}
	}

	switch {
	case m[5] != "":
		// implicit post-release ("1.0-1")
		v.Post = ptr(atoi(m[5]))
	case m[6] != "":
		v.Post = ptr(atoiDefaultZero(m[7]))
	}

	if m[8] != "" {
		v.Dev = ptr(atoiDefaultZero(m[9]))
	}

	if convErr != nil {
		return Version{}, convErr
	}

	v.Local = m[10]

	return v, nil
}

// MustParseVersion is like ParseVersion but panics on invalid input. Intended
// for version literals in tests and defaults.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func normalizePrePhase(phase string) string {
	switch phase {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	default:
		return phase
	}
}

// String returns the version as written in the manifest.
func (v Version) String() string {
	if v.original != "" {
		return v.original
	}
	return v.Canonical()
}

// Canonical returns the normalized form of the version.
func (v Version) Canonical() string {
	var b strings.Builder

	if v.Epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}

	parts := make([]string, len(v.Release))
	for i, r := range v.Release {
		parts[i] = strconv.Itoa(r)
	}
	b.WriteString(strings.Join(parts, "."))

	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Phase, v.Pre.Number)
	}
	if v.Post != nil {
		fmt.Fprintf(&b, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&b, ".dev%d", *v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&b, "+%s", v.Local)
	}

	return b.String()
}

// IsPreRelease reports whether the version has a pre-release or development
// component.
func (v Version) IsPreRelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// Compare returns -1, 0 or 1 depending on whether v orders before, equal to
// or after other. Local version labels participate in ordering only as a
// final tie-break; two versions that differ only in non-canonical spelling
// compare equal.
func (v Version) Compare(other Version) int {
	if v.Epoch != other.Epoch {
		return cmpInt(v.Epoch, other.Epoch)
	}

	if c := compareRelease(v.Release, other.Release); c != 0 {
		return c
	}

	if c := comparePre(v.preKey(), other.preKey()); c != 0 {
		return c
	}

	if c := comparePost(v.Post, other.Post); c != 0 {
		return c
	}

	if c := compareDev(v.Dev, other.Dev); c != 0 {
		return c
	}

	return compareLocal(v.Local, other.Local)
}

// Equal reports whether the two versions compare equal, ignoring spelling.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// compareRelease compares dotted release segments, treating missing trailing
// segments as zero so that 1.0 == 1.0.0.
func compareRelease(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return cmpInt(av, bv)
		}
	}
	return 0
}

// preKey encodes the pre-release component for ordering: a version with only
// a dev component sorts before any pre-release of the same release, and a
// version with neither sorts after all of them.
type preKey struct {
	rank   int // 0: dev-only, 1: pre-release, 2: final
	phase  int
	number int
}

var prePhaseRank = map[string]int{"a": 0, "b": 1, "rc": 2}

func (v Version) preKey() preKey {
	switch {
	case v.Pre != nil:
		return preKey{rank: 1, phase: prePhaseRank[v.Pre.Phase], number: v.Pre.Number}
	case v.Dev != nil && v.Post == nil:
		return preKey{rank: 0}
	default:
		return preKey{rank: 2}
	}
}

func comparePre(a, b preKey) int {
	if a.rank != b.rank {
		return cmpInt(a.rank, b.rank)
	}
	if a.phase != b.phase {
		return cmpInt(a.phase, b.phase)
	}
	return cmpInt(a.number, b.number)
}

func comparePost(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmpInt(*a, *b)
	}
}

// compareDev orders development releases before the corresponding release:
// absent dev sorts after any dev number.
func compareDev(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmpInt(*a, *b)
	}
}

// compareLocal orders local version labels segment-wise: numeric segments
// compare numerically and order after alphanumeric ones, absence orders
// before presence.
func compareLocal(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	as := splitLocal(a)
	bs := splitLocal(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		switch {
		case as[i].isNum && bs[i].isNum:
			if as[i].num != bs[i].num {
				return cmpInt(as[i].num, bs[i].num)
			}
		case as[i].isNum != bs[i].isNum:
			if as[i].isNum {
				return 1
			}
			return -1
		default:
			if c := strings.Compare(as[i].str, bs[i].str); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(as), len(bs))
}

type localSegment struct {
	str   string
	num   int
	isNum bool
}

var localSeparators = regexp.MustCompile(`[-_.]`)

func splitLocal(local string) []localSegment {
	parts := localSeparators.Split(local, -1)
	segs := make([]localSegment, len(parts))
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			segs[i] = localSegment{num: n, isNum: true}
		} else {
			segs[i] = localSegment{str: p}
		}
	}
	return segs
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func ptr[T any](v T) *T {
	return &v
}
