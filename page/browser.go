package page

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// BrowserSource loads a page through a headless Chrome tab, for platforms
// whose markup only exists after JavaScript rendering. The browser is
// launched lazily on first Load and shared across calls.
type BrowserSource struct {
	url      string
	headless bool
	navWait  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// BrowserOption configures a BrowserSource.
type BrowserOption func(*BrowserSource)

// WithHeadful runs Chrome with a visible window instead of headless.
func WithHeadful() BrowserOption {
	return func(s *BrowserSource) { s.headless = false }
}

// WithNavTimeout bounds navigation plus page load. Default: 30s.
func WithNavTimeout(d time.Duration) BrowserOption {
	return func(s *BrowserSource) { s.navWait = d }
}

// WithBrowserLogger sets a custom logger.
func WithBrowserLogger(l *slog.Logger) BrowserOption {
	return func(s *BrowserSource) { s.logger = l }
}

// NewBrowserSource creates a browser-backed source for pageURL.
func NewBrowserSource(pageURL string, opts ...BrowserOption) *BrowserSource {
	s := &BrowserSource{
		url:      pageURL,
		headless: true,
		navWait:  30 * time.Second,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load opens a stealth tab, navigates, waits for load, and serialises the
// rendered DOM.
func (s *BrowserSource) Load(ctx context.Context) (*Document, error) {
	b, err := s.ensureBrowser()
	if err != nil {
		return nil, err
	}

	pg, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("page: create tab: %w", err)
	}
	defer pg.Close()

	navCtx, cancel := context.WithTimeout(ctx, s.navWait)
	defer cancel()

	if err := pg.Context(navCtx).Navigate(s.url); err != nil {
		return nil, fmt.Errorf("page: navigate %s: %w", s.url, err)
	}
	if err := pg.Context(navCtx).WaitLoad(); err != nil {
		// A slow page is still worth serialising.
		s.logger.Warn("page: wait load timeout", "url", s.url, "error", err)
	}

	res, err := pg.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("page: serialise DOM: %w", err)
	}

	info, err := pg.Context(ctx).Info()
	finalURL := s.url
	if err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return ParseDocument(finalURL, []byte(res.Value.Str()))
}

// Capture navigates to the page and returns a base64-encoded PNG
// screenshot of the viewport.
func (s *BrowserSource) Capture(ctx context.Context) (string, error) {
	b, err := s.ensureBrowser()
	if err != nil {
		return "", err
	}

	pg, err := stealth.Page(b)
	if err != nil {
		return "", fmt.Errorf("page: create tab: %w", err)
	}
	defer pg.Close()

	navCtx, cancel := context.WithTimeout(ctx, s.navWait)
	defer cancel()

	if err := pg.Context(navCtx).Navigate(s.url); err != nil {
		return "", fmt.Errorf("page: navigate %s: %w", s.url, err)
	}
	if err := pg.Context(navCtx).WaitLoad(); err != nil {
		s.logger.Warn("page: wait load timeout", "url", s.url, "error", err)
	}

	png, err := pg.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return "", fmt.Errorf("page: screenshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// Target returns the URL this source navigates to.
func (s *BrowserSource) Target() string { return s.url }

// Close shuts down the shared browser, if one was launched.
func (s *BrowserSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return nil
}

func (s *BrowserSource) ensureBrowser() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New().Headless(s.headless)
	l = l.Set("disable-blink-features", "AutomationControlled")
	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("page: launch chrome: %w", err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("page: connect chrome: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		s.logger.Warn("page: ignore cert errors failed", "error", err)
	}

	s.browser = b
	s.lnch = l
	s.logger.Info("page: launched chrome", "headless", s.headless)
	return b, nil
}
