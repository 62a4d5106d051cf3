package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent identifies image fetches to hosts outside Azure DevOps.
const UserAgent = "TaskGenie/1.0"

// ErrImageNotFound indicates the image URL returned 404.
var ErrImageNotFound = errors.New("image not found")

// HTTPFetcherConfig configures HTTPImageFetcher.
type HTTPFetcherConfig struct {
	Timeout       time.Duration
	MaxBytes      int
	RatePerSecond float64
	Burst         int
}

// DefaultHTTPFetcherConfig returns conservative fetch settings.
func DefaultHTTPFetcherConfig() HTTPFetcherConfig {
	return HTTPFetcherConfig{
		Timeout:       30 * time.Second,
		MaxBytes:      DefaultMaxImageBytes,
		RatePerSecond: 5,
		Burst:         1,
	}
}

// HTTPImageFetcher downloads images over HTTP. Azure DevOps attachment URLs
// are requested as downloads with a bearer token; other hosts receive a
// fixed User-Agent. Requests are paced by a token-bucket limiter.
type HTTPImageFetcher struct {
	client   *http.Client
	tokens   TokenSource
	limiter  *rate.Limiter
	maxBytes int
	logger   *slog.Logger
}

// NewHTTPImageFetcher creates a fetcher. tokens may be nil when no Azure
// DevOps images are expected; such URLs then fail to fetch.
func NewHTTPImageFetcher(cfg HTTPFetcherConfig, tokens TokenSource, logger *slog.Logger) *HTTPImageFetcher {
	def := DefaultHTTPFetcherConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = def.RatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if logger == nil {
		logger = slog.Default().With("component", "image_fetcher")
	}
	return &HTTPImageFetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		tokens:   tokens,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		maxBytes: cfg.MaxBytes,
		logger:   logger,
	}
}

// Fetch downloads the image at rawURL. Bodies larger than the configured
// maximum are read one byte past the limit so the caller can reject them.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for fetch slot: %w", err)
	}

	req, err := f.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.DebugContext(ctx, "Failed to close image response body", "error", closeErr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrImageNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return data, nil
}

func (f *HTTPImageFetcher) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}

	if !IsAzureDevOpsURL(u) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("build image request: %w", err)
		}
		req.Header.Set("User-Agent", UserAgent)
		return req, nil
	}

	if f.tokens == nil {
		return nil, errors.New("azure devops image requires a token source")
	}
	token, err := f.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("download", "true")
	q.Set("api-version", "7.1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// IsAzureDevOpsURL reports whether u points at an Azure DevOps host.
func IsAzureDevOpsURL(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "visualstudio.com" || strings.HasSuffix(host, ".visualstudio.com") ||
		host == "azure.com" || strings.HasSuffix(host, ".azure.com")
}
