package page

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxFetchBytes caps HTTP body reads to prevent runaway downloads.
const maxFetchBytes = 10 << 20

// HTTPSource fetches a page over plain HTTP. No browser, no JS — enough
// for server-rendered markup.
type HTTPSource struct {
	url    string
	client *http.Client
	ua     string
	logger *slog.Logger
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) { s.ua = ua }
}

// WithHTTPLogger sets a custom logger.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(s *HTTPSource) { s.logger = l }
}

// NewHTTPSource creates a source that GETs pageURL on every Load.
func NewHTTPSource(pageURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:    pageURL,
		client: &http.Client{Timeout: 30 * time.Second},
		ua:     "Mozilla/5.0 (compatible; CreatorOSCollector/1.0)",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load GETs the page and parses the response body.
func (s *HTTPSource) Load(ctx context.Context) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("page: new request: %w", err)
	}
	req.Header.Set("User-Agent", s.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page: fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("page: fetch %s: status %d", s.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("page: read body: %w", err)
	}

	s.logger.Debug("page: fetched", "url", s.url, "status", resp.StatusCode, "size", len(body))
	return ParseDocument(s.url, body)
}

// Target returns the URL this source fetches.
func (s *HTTPSource) Target() string { return s.url }
