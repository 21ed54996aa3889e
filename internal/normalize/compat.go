package normalize

import "github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"

// EligibilityFunc decides whether a fully built version may be published.
type EligibilityFunc func(v registry.Version, tags TagSet) bool

// Compatible rejects sfz sample libraries: OwlPlug cannot track their install
// state on disk. Type and other tags do not matter.
func Compatible(_ registry.Version, tags TagSet) bool {
	return !tags.Has("sfz")
}
