package registry

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// SchemaVersion is the version of the registry format written by this tool.
const SchemaVersion = "1.0.0"

// FormatUnknown is the only bundle format StudioRack lets us infer.
const FormatUnknown = "unknown"

// PluginType classifies a plugin version.
type PluginType string

const (
	TypeEffect     PluginType = "effect"
	TypeInstrument PluginType = "instrument"
	TypeUnknown    PluginType = "unknown"
)

// ParsePluginType maps s onto the fixed set of plugin types, case-insensitively.
// Anything unrecognized is TypeUnknown.
func ParsePluginType(s string) PluginType {
	switch t := PluginType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeEffect, TypeInstrument:
		return t
	default:
		return TypeUnknown
	}
}

// Registry is the envelope written to registry.json.
type Registry struct {
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	SchemaVersion string   `json:"schemaVersion"`
	Packages      Packages `json:"packages"`
}

// Package is a normalized plugin with at least one admitted version.
type Package struct {
	Slug          string   `json:"slug"`
	LatestVersion string   `json:"latestVersion"`
	Versions      Versions `json:"versions"`
}

// Version is one normalized plugin release.
type Version struct {
	Name          string     `json:"name"`
	Creator       string     `json:"creator"`
	License       string     `json:"license"`
	Description   string     `json:"description"`
	PageURL       string     `json:"pageUrl"`
	Version       string     `json:"version"`
	Type          PluginType `json:"type"`
	ScreenshotURL *string    `json:"screenshotUrl"`
	Tags          []string   `json:"tags"`
	Bundles       []Bundle   `json:"bundles"`
}

// Bundle is a platform-scoped downloadable artifact of a version.
type Bundle struct {
	Name        string   `json:"name"`
	Targets     []string `json:"targets"`
	Format      string   `json:"format"`
	DownloadURL string   `json:"downloadUrl"`
	FileSize    int64    `json:"fileSize"`
}

// Packages encodes as a JSON object keyed by slug, in slice order. Assemble
// produces it sorted and free of duplicates.
type Packages []Package

// Get returns the package with the given slug.
func (p Packages) Get(slug string) (Package, bool) {
	i, ok := slices.BinarySearchFunc(p, slug, func(pkg Package, s string) int {
		return strings.Compare(pkg.Slug, s)
	})
	if !ok {
		return Package{}, false
	}
	return p[i], true
}

func (p Packages) MarshalJSON() ([]byte, error) {
	return marshalObject(len(p), func(i int) (string, any) { return p[i].Slug, p[i] })
}

func (p *Packages) UnmarshalJSON(data []byte) error {
	var m map[string]Package
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Packages, 0, len(m))
	for slug, pkg := range m {
		if pkg.Slug == "" {
			pkg.Slug = slug
		}
		out = append(out, pkg)
	}
	slices.SortFunc(out, func(a, b Package) int { return strings.Compare(a.Slug, b.Slug) })
	*p = out
	return nil
}

// Versions encodes as a JSON object keyed by version identifier, in slice
// order. NewVersions sorts it by version.
type Versions []Version

// NewVersions returns vs sorted in ascending version order.
func NewVersions(vs ...Version) Versions {
	out := slices.Clone(Versions(vs))
	slices.SortStableFunc(out, func(a, b Version) int { return CompareVersionIDs(a.Version, b.Version) })
	return out
}

// IDs returns the version identifiers in encoding order.
func (v Versions) IDs() []string {
	ids := make([]string, len(v))
	for i := range v {
		ids[i] = v[i].Version
	}
	return ids
}

// Get returns the version with the given identifier.
func (v Versions) Get(id string) (Version, bool) {
	for _, ver := range v {
		if ver.Version == id {
			return ver, true
		}
	}
	return Version{}, false
}

func (v Versions) MarshalJSON() ([]byte, error) {
	return marshalObject(len(v), func(i int) (string, any) { return v[i].Version, v[i] })
}

func (v *Versions) UnmarshalJSON(data []byte) error {
	var m map[string]Version
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	vs := make([]Version, 0, len(m))
	for id, ver := range m {
		if ver.Version == "" {
			ver.Version = id
		}
		vs = append(vs, ver)
	}
	*v = NewVersions(vs...)
	return nil
}

// marshalObject writes n key/value pairs as a JSON object in index order.
func marshalObject(n int, entry func(i int) (string, any)) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < n; i++ {
		key, val := entry(i)
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", key, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
