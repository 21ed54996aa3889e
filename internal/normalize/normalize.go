package normalize

import (
	"slices"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/upstream"
	"go.uber.org/zap"
)

// Stats counts what a Normalizer admitted and skipped.
type Stats struct {
	Packages        int // packages emitted
	Versions        int // versions admitted
	SkippedVersions int
	SkippedPackages int
}

// Normalizer converts upstream packages for a single run.
type Normalizer struct {
	urls     URLBuilder
	eligible EligibilityFunc
	logger   *zap.Logger
	stats    Stats
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger that receives skip events.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithEligibility replaces the Compatible rule.
func WithEligibility(fn EligibilityFunc) Option {
	return func(n *Normalizer) {
		if fn != nil {
			n.eligible = fn
		}
	}
}

// New returns a Normalizer that builds download URLs against downloadBaseURL.
func New(downloadBaseURL string, opts ...Option) *Normalizer {
	n := &Normalizer{
		urls:     NewURLBuilder(downloadBaseURL),
		eligible: Compatible,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Stats returns the counters accumulated so far.
func (n *Normalizer) Stats() Stats { return n.stats }

// Batch normalizes every package of an upstream document in slug order.
func (n *Normalizer) Batch(b upstream.Batch) []registry.Package {
	var out []registry.Package
	for _, slug := range b.Document.Slugs() {
		if pkg, ok := n.Package(slug, b.Document[slug], b.Kind); ok {
			out = append(out, pkg)
		}
	}
	return out
}

// Package normalizes one upstream package. kind, when set, overrides tag
// classification. It reports false when no version is eligible, in which case
// the package must be left out of the registry.
func (n *Normalizer) Package(slug string, p upstream.Package, kind upstream.Kind) (registry.Package, bool) {
	admitted := make([]registry.Version, 0, len(p.Versions))
	for _, key := range p.VersionKeys() {
		v, tags, err := n.version(key, p.Versions[key], p.License, kind)
		if err != nil {
			n.stats.SkippedVersions++
			n.logger.Info("Version skipped",
				zap.String("package", slug),
				zap.String("version", key),
				zap.String("reason", "invalid file descriptor"),
				zap.Error(err))
			continue
		}
		if !n.eligible(v, tags) {
			n.stats.SkippedVersions++
			n.logger.Info("Version skipped",
				zap.String("package", slug),
				zap.String("version", key),
				zap.String("reason", "incompatible"))
			continue
		}
		admitted = append(admitted, v)
	}

	if len(admitted) == 0 {
		n.stats.SkippedPackages++
		n.logger.Info("Package skipped",
			zap.String("package", slug),
			zap.Int("versions", len(p.Versions)),
			zap.String("reason", "no eligible versions"))
		return registry.Package{}, false
	}

	versions := registry.NewVersions(admitted...)
	latest := registry.ResolveLatest(p.Version, versions.IDs())
	if latest != p.Version {
		n.logger.Debug("Latest version not published, using highest eligible",
			zap.String("package", slug),
			zap.String("upstream", p.Version),
			zap.String("latest", latest))
	}

	n.stats.Packages++
	n.stats.Versions += len(versions)
	return registry.Package{
		Slug:          slug,
		LatestVersion: latest,
		Versions:      versions,
	}, true
}

func (n *Normalizer) version(key string, v upstream.Version, license string, kind upstream.Kind) (registry.Version, TagSet, error) {
	tags := NewTagSet(v.Tags)

	typ := Classify(tags)
	if kind != upstream.KindNone {
		typ = registry.ParsePluginType(string(kind))
	}

	carried := slices.Clone(v.Tags)
	if carried == nil {
		carried = []string{}
	}

	release := v.ReleaseID(key)
	bundles, err := BuildBundles(v, release, n.urls)
	if err != nil {
		return registry.Version{}, tags, err
	}
	return registry.Version{
		Name:          v.Name,
		Creator:       v.Author,
		License:       license,
		Description:   v.Description,
		PageURL:       v.Homepage,
		Version:       key,
		Type:          typ,
		ScreenshotURL: ScreenshotURL(v, release, n.urls),
		Tags:          carried,
		Bundles:       bundles,
	}, tags, nil
}
