package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/branding"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/config"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/normalize"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/output"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/upstream"
	"go.uber.org/zap"
)

// Result is the outcome of a run. Err is nil on success.
type Result struct {
	Registry   *registry.Registry // nil if the run failed before assembly
	Files      output.Files       // zero for dry runs and failed writes
	Stats      normalize.Stats
	Duplicates []string // slugs that overwrote an earlier package
	Err        error
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Err == nil }

type runner struct {
	logger     *zap.Logger
	httpClient *http.Client
	dryRun     bool
}

// Option configures a run.
type Option func(*runner)

// WithLogger sets the run logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHTTPClient sets the client used for upstream requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *runner) { r.httpClient = c }
}

// WithDryRun stops the run after assembly; nothing is written.
func WithDryRun() Option {
	return func(r *runner) { r.dryRun = true }
}

// Run executes one build with cfg.
func Run(ctx context.Context, cfg config.Config, opts ...Option) Result {
	r := &runner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	log := r.logger

	log.Info("Starting registry build",
		zap.String("registry_url", cfg.RegistryURL),
		zap.String("source_format", string(cfg.SourceFormat)),
		zap.Bool("dry_run", r.dryRun))

	fetchOpts := []upstream.Option{upstream.WithLogger(log)}
	if r.httpClient != nil {
		fetchOpts = append(fetchOpts, upstream.WithHTTPClient(r.httpClient))
	}
	batches, err := upstream.NewFetcher(cfg, fetchOpts...).Fetch(ctx)
	if err != nil {
		return Result{Err: err}
	}

	n := normalize.New(cfg.GitHubURL, normalize.WithLogger(log))
	var pkgs []registry.Package
	for _, b := range batches {
		log.Info("Normalizing packages", zap.String("source", b.Source), zap.Int("packages", len(b.Document)))
		pkgs = append(pkgs, n.Batch(b)...)
	}

	var res Result
	res.Stats = n.Stats()
	res.Registry = registry.Assemble(registry.Meta{
		Name: branding.RegistryName(),
		URL:  cfg.RegistryURL,
	}, pkgs, func(slug string) {
		res.Duplicates = append(res.Duplicates, slug)
		log.Info("Duplicate package slug, keeping the later entry", zap.String("package", slug))
	})

	log.Info("Registry assembled",
		zap.Int("packages", len(res.Registry.Packages)),
		zap.Int("versions", res.Registry.VersionCount()),
		zap.Int("skipped_packages", res.Stats.SkippedPackages),
		zap.Int("skipped_versions", res.Stats.SkippedVersions))

	if r.dryRun {
		return res
	}

	// A run cancelled before this point leaves the previous output untouched.
	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("run cancelled before writing: %w", err)
		return res
	}

	files, err := output.Write(cfg.BuildDir, res.Registry)
	if err != nil {
		res.Err = err
		return res
	}
	res.Files = files
	log.Info("Registry files saved", zap.String("pretty", files.Pretty), zap.String("compact", files.Compact))
	return res
}
