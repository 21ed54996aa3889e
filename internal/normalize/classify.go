package normalize

import "github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"

// Classify derives the plugin type from a version's tags. An "instrument" tag
// takes precedence over "effect" and "fx".
func Classify(tags TagSet) registry.PluginType {
	switch {
	case tags.Has("instrument"):
		return registry.TypeInstrument
	case tags.Has("effect"), tags.Has("fx"):
		return registry.TypeEffect
	default:
		return registry.TypeUnknown
	}
}
