package domain

import (
	"cmp"
	"slices"
)

// Ownership is the result of resolving a path to its owning module.
type Ownership struct {
	// Owner is the selected module. It is the zero value when Found is false.
	Owner InternedString
	// Found reports whether any module directory prefixes the path.
	Found bool
	// Tied lists every module that matched at the winning directory length
	// when more than one did. Owner is always the smallest of them.
	Tied []InternedString
}

type ownerEntry struct {
	id  InternedString
	dir string
}

// OwnershipMapper resolves file paths to the module owning them by
// longest path-segment directory prefix.
type OwnershipMapper struct {
	entries []ownerEntry
}

// NewOwnershipMapper builds a mapper over the given modules.
// It does not require the modules to have disjoint directories.
func NewOwnershipMapper(modules []Module) *OwnershipMapper {
	entries := make([]ownerEntry, 0, len(modules))
	for _, m := range modules {
		entries = append(entries, ownerEntry{id: m.ID, dir: NormalizePath(m.Dir)})
	}

	// Most specific directory first, then smallest id, so the first match wins
	// and ties resolve to the lexicographically smallest id.
	slices.SortFunc(entries, func(a, b ownerEntry) int {
		if c := cmp.Compare(len(b.dir), len(a.dir)); c != 0 {
			return c
		}
		return a.id.Compare(b.id)
	})

	return &OwnershipMapper{entries: entries}
}

// OwnershipMapper returns a mapper over all registered modules.
func (r *Registry) OwnershipMapper() *OwnershipMapper {
	return NewOwnershipMapper(r.modules)
}

// OwnerOf resolves the module owning filePath.
func (m *OwnershipMapper) OwnerOf(filePath string) Ownership {
	p := NormalizePath(filePath)

	var res Ownership
	matchLen := -1
	for _, e := range m.entries {
		if res.Found && len(e.dir) < matchLen {
			break
		}
		if !IsPathPrefix(e.dir, p) {
			continue
		}
		if !res.Found {
			res = Ownership{Owner: e.id, Found: true}
			matchLen = len(e.dir)
			continue
		}
		if len(res.Tied) == 0 {
			res.Tied = append(res.Tied, res.Owner)
		}
		res.Tied = append(res.Tied, e.id)
	}

	return res
}
