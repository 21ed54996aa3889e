package normalize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/upstream"
)

// URLBuilder synthesizes release download URLs on the download host.
type URLBuilder struct {
	base string
}

// NewURLBuilder returns a builder for the given host, e.g. https://github.com.
func NewURLBuilder(baseURL string) URLBuilder {
	return URLBuilder{base: strings.TrimSuffix(baseURL, "/")}
}

// DownloadURL returns {base}/{repo}/releases/download/{release}/{fileName}.
// Segments are used verbatim; upstream values are already URL-safe.
func (b URLBuilder) DownloadURL(repo, release, fileName string) string {
	return b.base + "/" + repo + "/releases/download/" + release + "/" + fileName
}

type platform struct {
	name    string
	targets []string
	file    func(upstream.Files) *upstream.File
}

// platforms lists the bundle-producing families in output order.
var platforms = []platform{
	{"Windows Release", []string{"win32", "win64"}, func(f upstream.Files) *upstream.File { return f.Win }},
	{"MacOS Release", []string{"osx"}, func(f upstream.Files) *upstream.File { return f.Mac }},
	{"Linux Release", []string{"linux32", "linux64"}, func(f upstream.Files) *upstream.File { return f.Linux }},
}

// BuildBundles returns one bundle per platform family present in v.Files, in
// win, mac, linux order. The result is never nil. It fails when a present
// descriptor's size is not a byte count.
func BuildBundles(v upstream.Version, release string, urls URLBuilder) ([]registry.Bundle, error) {
	bundles := make([]registry.Bundle, 0, len(platforms))
	for _, p := range platforms {
		f := p.file(v.Files)
		if f == nil {
			continue
		}
		size, err := f.Bytes()
		if err != nil {
			return []registry.Bundle{}, fmt.Errorf("%s: %w", p.name, err)
		}
		bundles = append(bundles, registry.Bundle{
			Name:        p.name,
			Targets:     slices.Clone(p.targets),
			Format:      registry.FormatUnknown,
			DownloadURL: urls.DownloadURL(v.Repo, release, f.Name),
			FileSize:    size,
		})
	}
	return bundles, nil
}

// ScreenshotURL returns the image download URL, or nil without an image.
func ScreenshotURL(v upstream.Version, release string, urls URLBuilder) *string {
	if v.Files.Image == nil {
		return nil
	}
	u := urls.DownloadURL(v.Repo, release, v.Files.Image.Name)
	return &u
}
