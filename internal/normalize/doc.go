// Package normalize maps upstream StudioRack packages onto the normalized
// registry model: it classifies versions by tag, builds per-platform bundles
// with synthesized download URLs, and drops versions the downstream catalog
// cannot manage.
package normalize
