package registry

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersionIDs orders version identifiers. Identifiers that parse as
// semantic versions (a leading "v" is tolerated) come first, in semver order;
// the rest follow in byte order. Ties between equal semvers spelled
// differently ("1.0" and "1.0.0") are broken by byte order so the result is
// total.
func CompareVersionIDs(a, b string) int {
	va, errA := parseSemver(a)
	vb, errB := parseSemver(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// ResolveLatest returns want when it is one of ids, otherwise the highest of
// ids. With no ids, want is returned unchanged.
func ResolveLatest(want string, ids []string) string {
	if len(ids) == 0 || slices.Contains(ids, want) {
		return want
	}
	return slices.MaxFunc(ids, CompareVersionIDs)
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
