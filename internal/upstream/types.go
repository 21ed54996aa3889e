package upstream

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind is the plugin kind implied by the document a package came from.
// The unified document carries no kind.
type Kind string

const (
	KindNone       Kind = ""
	KindEffect     Kind = "effect"
	KindInstrument Kind = "instrument"
)

// Document maps package slug to package.
type Document map[string]Package

// Slugs returns the document's slugs in lexicographic order.
func (d Document) Slugs() []string {
	slugs := make([]string, 0, len(d))
	for slug := range d {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Package is one upstream plugin with all its published versions.
type Package struct {
	Version  string             `json:"version"` // latest version identifier
	License  string             `json:"license"`
	Versions map[string]Version `json:"versions"`
}

// VersionKeys returns the package's version keys in lexicographic order.
func (p Package) VersionKeys() []string {
	keys := make([]string, 0, len(p.Versions))
	for k := range p.Versions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Version is one published release of a plugin.
type Version struct {
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Homepage    string   `json:"homepage"`
	Repo        string   `json:"repo"`    // "owner/name" on the download host
	Release     string   `json:"release"` // release tag on the download host
	Version     string   `json:"version"` // legacy documents only
	Tags        []string `json:"tags"`
	Files       Files    `json:"files"`
}

// ReleaseID returns the tag used in download paths: the release field, then
// the legacy version field, then the version key the version was listed under.
func (v Version) ReleaseID(key string) string {
	switch {
	case v.Release != "":
		return v.Release
	case v.Version != "":
		return v.Version
	default:
		return key
	}
}

// Files holds the per-platform file descriptors of a version.
type Files struct {
	Win   *File `json:"win,omitempty"`
	Mac   *File `json:"mac,omitempty"`
	Linux *File `json:"linux,omitempty"`
	Image *File `json:"image,omitempty"`
}

// File describes one downloadable asset. Size keeps the number as written
// upstream; Bytes interprets it.
type File struct {
	Name string      `json:"name"`
	Size json.Number `json:"size"`
}

// Bytes returns the file size as a byte count. A missing or null size is 0.
// Integral values written in float form ("100.0", "1e3") are accepted;
// fractional, negative or out-of-range sizes are an error.
func (f File) Bytes() (int64, error) {
	if f.Size == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(string(f.Size), 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative file size %s", f.Size)
		}
		return n, nil
	}
	x, err := strconv.ParseFloat(string(f.Size), 64)
	if err != nil {
		return 0, fmt.Errorf("file size %q is not a number", f.Size)
	}
	if x < 0 || x != math.Trunc(x) || x >= math.MaxInt64 {
		return 0, fmt.Errorf("file size %s is not a byte count", f.Size)
	}
	return int64(x), nil
}

// Batch is one decoded upstream document together with where it came from.
type Batch struct {
	Source   string
	Kind     Kind
	Document Document
}
