// Package preview turns a bare URL into displayable metadata using an
// external link-preview provider, degrading to domain-derived content
// whenever the provider is not configured or does not answer.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

const (
	// DefaultEndpoint is the linkpreview.net API.
	DefaultEndpoint = "https://api.linkpreview.net/"

	// NoKeyDescription is shown when no API key is configured.
	NoKeyDescription = "Add a link preview API key in settings to load rich previews"
	// FetchFailedDescription is shown when the provider call fails.
	FetchFailedDescription = "Failed to fetch preview"

	maxBodyBytes = 1 << 20
)

// providerResponse is the JSON body returned by the provider. All fields are optional.
type providerResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
}

// Fetcher fetches link previews. Provider and network problems produce
// fallback content instead of an error; only a cancelled context fails.
type Fetcher struct {
	endpoint   string
	credential *Credential
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client. A nil client is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithTimeout bounds each provider call. Zero means no timeout. The timeout
// is set on a copy of the HTTP client, including one given by WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithLogger sets the logger used to report provider failures.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher for the given provider endpoint and credential.
func NewFetcher(endpoint string, credential *Credential, opts ...Option) *Fetcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	f := &Fetcher{
		endpoint:   endpoint,
		credential: credential,
		httpClient: &http.Client{},
		logger:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.timeout > 0 {
		c := *f.httpClient
		c.Timeout = f.timeout
		f.httpClient = &c
	}
	return f
}

// Credential returns the credential the fetcher reads its key from.
func (f *Fetcher) Credential() *Credential {
	return f.credential
}

// Fetch returns a preview for rawURL. The error is non-nil only when ctx is
// done, so callers can tell an abandoned fetch from a failed one.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.Preview, error) {
	host := domain.DomainOf(rawURL)

	key := f.credential.Key()
	if key == "" {
		return fallback(rawURL, host, NoKeyDescription), nil
	}

	resp, err := f.request(ctx, rawURL, key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Preview{}, ctxErr
		}
		f.logger.Warn("link preview failed",
			logger.String("url", rawURL),
			logger.Error(err))
		return fallback(rawURL, host, FetchFailedDescription), nil
	}

	p := domain.Preview{
		Title:       strings.TrimSpace(resp.Title),
		Description: strings.TrimSpace(resp.Description),
		Image:       strings.TrimSpace(resp.Image),
		URL:         rawURL,
		Domain:      host,
	}
	if p.Title == "" {
		p.Title = domain.FallbackTitle(host)
	}
	if resp.URL != "" {
		p.URL = resp.URL
	}
	return p, nil
}

// request performs the single provider call. No retry.
func (f *Fetcher) request(ctx context.Context, rawURL, key string) (*providerResponse, error) {
	endpoint, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid preview endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", key)
	q.Set("q", rawURL)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}

	var body providerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &body, nil
}

func fallback(rawURL, host, description string) domain.Preview {
	return domain.Preview{
		Title:       domain.FallbackTitle(host),
		Description: description,
		URL:         rawURL,
		Domain:      host,
	}
}
