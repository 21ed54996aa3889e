package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/branding"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxDocumentSize caps the bytes read from a single upstream document.
const maxDocumentSize = 64 << 20

// Fetcher retrieves upstream documents as configured.
type Fetcher struct {
	cfg        config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithLogger sets the logger used for fetch progress.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher for cfg. The default HTTP client applies
// cfg.Timeout to every request.
func NewFetcher(cfg config.Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves every document the configured source format needs. Legacy
// documents are fetched concurrently; the first failure cancels the others
// and is returned. No batch is returned unless all documents succeeded.
func (f *Fetcher) Fetch(ctx context.Context) ([]Batch, error) {
	if f.cfg.SourceFormat == config.FormatLegacy {
		return f.fetchLegacy(ctx)
	}
	b, err := f.fetchOne(ctx, f.cfg.Document, KindNone)
	if err != nil {
		return nil, err
	}
	return []Batch{b}, nil
}

func (f *Fetcher) fetchLegacy(ctx context.Context) ([]Batch, error) {
	docs := []struct {
		name string
		kind Kind
	}{
		{f.cfg.EffectsDocument, KindEffect},
		{f.cfg.InstrumentsDocument, KindInstrument},
	}

	batches := make([]Batch, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range docs {
		g.Go(func() error {
			b, err := f.fetchOne(gctx, d.name, d.kind)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, document string, kind Kind) (Batch, error) {
	source := Location(f.cfg.RegistryURL, document)
	f.logger.Info("Fetching upstream document", zap.String("source", source), zap.String("kind", string(kind)))

	data, err := f.read(ctx, source)
	if err != nil {
		return Batch{}, err
	}

	doc, err := Parse(data)
	if err != nil {
		return Batch{}, &FetchError{Source: source, Err: err}
	}

	f.logger.Debug("Fetched upstream document",
		zap.String("source", source),
		zap.Int("bytes", len(data)),
		zap.Int("packages", len(doc)))
	return Batch{Source: source, Kind: kind, Document: doc}, nil
}

func (f *Fetcher) read(ctx context.Context, source string) ([]byte, error) {
	if !config.IsRemote(source) {
		return readLocal(ctx, source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.UserAgent())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: source, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if len(data) > maxDocumentSize {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("document exceeds %d bytes", maxDocumentSize)}
	}
	return data, nil
}

func readLocal(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}
	return data, nil
}

// Location joins the registry base and a document name. Remote bases are
// joined with a single "/"; local bases (plain paths or file:// URLs) become
// filesystem paths.
func Location(base, document string) string {
	if config.IsRemote(base) {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(document, "/")
	}
	return filepath.Join(strings.TrimPrefix(base, "file://"), document)
}
