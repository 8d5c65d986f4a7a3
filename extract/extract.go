// Package extract turns page DOMs into normalized snapshots.
//
// Extraction is heuristic and best-effort: platform markup changes
// constantly, so every step degrades instead of failing. A page that
// cannot be read still yields a snapshot — with empty text and metrics —
// so one broken selector never aborts a collection cycle.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/Nikhileshpal145/creator-os-collector/classify"
	"github.com/Nikhileshpal145/creator-os-collector/page"
)

// DefaultMaxTextLen is the visible-text character budget per snapshot.
const DefaultMaxTextLen = 3000

// Config configures an Extractor.
type Config struct {
	// MaxTextLen caps VisibleText length (default: 3000 chars).
	MaxTextLen int

	// Markdown enables the sanitized-markdown rendering of the content
	// region in addition to plain text.
	Markdown bool

	// Logger for diagnostics.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = DefaultMaxTextLen
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor builds snapshots from page documents.
type Extractor struct {
	cfg Config
	md  *markdownConverter
	now func() time.Time
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	cfg.defaults()
	e := &Extractor{cfg: cfg, now: time.Now}
	if cfg.Markdown {
		e.md = newMarkdownConverter()
	}
	return e
}

// BuildSnapshot loads the source and extracts a snapshot. It never
// returns an error: a source or DOM failure produces a degraded snapshot
// with empty text and metrics, flagged only in the log.
func (e *Extractor) BuildSnapshot(ctx context.Context, src page.Source) *Snapshot {
	doc, err := src.Load(ctx)
	if err != nil {
		// The degraded snapshot still carries the target URL so results
		// from different pages stay distinguishable downstream.
		target := src.Target()
		e.cfg.Logger.Warn("extract: page load failed, degrading",
			"url", target, "error", err)
		return &Snapshot{
			URL:        target,
			Platform:   classify.DetectPlatform(target),
			PageType:   classify.DetectPageType(target),
			Metrics:    map[string]float64{},
			CapturedAt: e.now(),
		}
	}
	return e.FromDocument(doc)
}

// FromDocument extracts a snapshot from an already-loaded document.
func (e *Extractor) FromDocument(doc *page.Document) *Snapshot {
	text, regionHTML := visibleContent(doc.Root)

	// Metrics scan the full rendered text, not the truncated budget:
	// counters frequently sit outside the main content region.
	fullText := text
	if body := findBody(doc.Root); body != nil {
		fullText = collectVisibleText(body)
	}

	snap := &Snapshot{
		URL:         doc.URL,
		Title:       doc.Title,
		Platform:    classify.DetectPlatform(doc.URL),
		PageType:    classify.DetectPageType(doc.URL),
		VisibleText: truncate(text, e.cfg.MaxTextLen),
		Metrics:     ExtractMetrics(fullText),
		CapturedAt:  e.now(),
	}
	if e.md != nil {
		snap.Markdown = e.md.convert(regionHTML, doc.URL)
	}

	e.cfg.Logger.Debug("extract: snapshot built",
		"url", snap.URL, "platform", snap.Platform, "page_type", snap.PageType,
		"text_len", len(snap.VisibleText), "metrics", len(snap.Metrics))
	return snap
}
