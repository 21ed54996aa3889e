package registry

import (
	"slices"
	"strings"
)

// Meta holds the envelope fields that do not come from packages.
type Meta struct {
	Name string
	URL  string
}

// DuplicateFunc is told about every slug that overwrote an earlier package.
type DuplicateFunc func(slug string)

// Assemble builds the registry envelope. Packages are stably sorted by slug,
// so among packages sharing a slug the one that came later in pkgs wins.
// Packages without versions are left out. onDuplicate may be nil.
func Assemble(meta Meta, pkgs []Package, onDuplicate DuplicateFunc) *Registry {
	sorted := make([]Package, 0, len(pkgs))
	for _, p := range pkgs {
		if len(p.Versions) > 0 {
			sorted = append(sorted, p)
		}
	}
	slices.SortStableFunc(sorted, func(a, b Package) int { return strings.Compare(a.Slug, b.Slug) })

	out := make(Packages, 0, len(sorted))
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Slug == p.Slug {
			out[n-1] = p
			if onDuplicate != nil {
				onDuplicate(p.Slug)
			}
			continue
		}
		out = append(out, p)
	}

	return &Registry{
		Name:          meta.Name,
		URL:           meta.URL,
		SchemaVersion: SchemaVersion,
		Packages:      out,
	}
}

// VersionCount returns the number of versions across all packages.
func (r *Registry) VersionCount() int {
	n := 0
	for _, p := range r.Packages {
		n += len(p.Versions)
	}
	return n
}
