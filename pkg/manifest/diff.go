// SPDX-License-Identifier: Apache-2.0

package manifest

import "sort"

// Changes describes the difference between two manifests, keyed on
// normalized package names. File order is irrelevant to the comparison.
type Changes struct {
	Added   []*Requirement `json:"added,omitempty"`
	Removed []*Requirement `json:"removed,omitempty"`
	Changed []Change       `json:"changed,omitempty"`
}

// Change is a requirement present in both manifests with different extras,
// version clauses or markers.
type Change struct {
	Old *Requirement `json:"old"`
	New *Requirement `json:"new"`
}

// IsEmpty reports whether the two manifests declare the same requirements.
func (c *Changes) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff compares two manifests requirement by requirement. Lines that moved
// or were reformatted without changing meaning do not count as changes.
func Diff(oldM, newM *Manifest) *Changes {
	oldByName := requirementsByName(oldM)
	newByName := requirementsByName(newM)

	changes := &Changes{}

	for name, newReq := range newByName {
		oldReq, ok := oldByName[name]
		if !ok {
			changes.Added = append(changes.Added, newReq)
			continue
		}
		if !equivalent(oldReq, newReq) {
			changes.Changed = append(changes.Changed, Change{Old: oldReq, New: newReq})
		}
	}

	for name, oldReq := range oldByName {
		if _, ok := newByName[name]; !ok {
			changes.Removed = append(changes.Removed, oldReq)
		}
	}

	sort.Slice(changes.Added, func(i, j int) bool {
		return NormalizeName(changes.Added[i].Name) < NormalizeName(changes.Added[j].Name)
	})
	sort.Slice(changes.Removed, func(i, j int) bool {
		return NormalizeName(changes.Removed[i].Name) < NormalizeName(changes.Removed[j].Name)
	})
	sort.Slice(changes.Changed, func(i, j int) bool {
		return NormalizeName(changes.Changed[i].New.Name) < NormalizeName(changes.Changed[j].New.Name)
	})

	return changes
}

func requirementsByName(m *Manifest) map[string]*Requirement {
	byName := make(map[string]*Requirement)
	for _, req := range m.Requirements() {
		byName[NormalizeName(req.Name)] = req
	}
	return byName
}

// equivalent compares two requirements for the same package, ignoring name
// spelling, clause order and inline comments.
func equivalent(a, b *Requirement) bool {
	if a.Marker != b.Marker {
		return false
	}
	if !sameStrings(a.Extras, b.Extras) {
		return false
	}

	aClauses := make([]string, len(a.Specifiers))
	for i, s := range a.Specifiers {
		aClauses[i] = string(s.Op) + s.Version
	}
	bClauses := make([]string, len(b.Specifiers))
	for i, s := range b.Specifiers {
		bClauses[i] = string(s.Op) + s.Version
	}
	return sameStrings(aClauses, bClauses)
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)

	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
