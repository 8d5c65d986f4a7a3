package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Nikhileshpal145/creator-os-collector/classify"
	"github.com/Nikhileshpal145/creator-os-collector/page"
)

const profileFixture = `<html>
<head><title>Creator Profile</title></head>
<body>
  <nav>Home · Explore · Notifications</nav>
  <main>
    <h1>Creator</h1>
    <p>Building things on the internet.</p>
    <span>3,847 followers</span>
    <span>1.2K views</span>
    <span>800 views</span>
  </main>
  <footer>Terms · Privacy</footer>
  <script>var tracking = true;</script>
</body>
</html>`

func newTestExtractor(t *testing.T, cfg Config) *Extractor {
	t.Helper()
	e := New(cfg)
	e.now = func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestBuildSnapshot(t *testing.T) {
	e := newTestExtractor(t, Config{})
	src := &page.StaticSource{URL: "https://www.instagram.com/creator/", HTML: profileFixture}

	snap := e.BuildSnapshot(context.Background(), src)
	if snap.Platform != classify.PlatformInstagram {
		t.Errorf("platform = %q", snap.Platform)
	}
	if snap.PageType != classify.PageTypeProfile {
		t.Errorf("page type = %q", snap.PageType)
	}
	if snap.Title != "Creator Profile" {
		t.Errorf("title = %q", snap.Title)
	}
	if !strings.Contains(snap.VisibleText, "Building things") {
		t.Errorf("visible text missing content: %q", snap.VisibleText)
	}
	if strings.Contains(snap.VisibleText, "Notifications") {
		t.Errorf("visible text contains nav boilerplate: %q", snap.VisibleText)
	}
	if strings.Contains(snap.VisibleText, "tracking") {
		t.Errorf("visible text contains script content: %q", snap.VisibleText)
	}
	if snap.Metrics["followers"] != 3847 {
		t.Errorf("followers = %v", snap.Metrics["followers"])
	}
	if snap.Metrics["views"] != 1200 {
		t.Errorf("views = %v, want 1200", snap.Metrics["views"])
	}
}

func TestBuildSnapshot_DegradesOnLoadFailure(t *testing.T) {
	e := newTestExtractor(t, Config{})
	src := &page.StaticSource{
		URL: "https://www.instagram.com/creator/",
		Err: errors.New("tab crashed"),
	}

	snap := e.BuildSnapshot(context.Background(), src)
	if snap == nil {
		t.Fatal("expected degraded snapshot, got nil")
	}
	if snap.VisibleText != "" || len(snap.Metrics) != 0 {
		t.Errorf("degraded snapshot not empty: %+v", snap)
	}
	// The target URL and its classification survive so degraded results
	// from different pages stay distinguishable.
	if snap.URL != "https://www.instagram.com/creator/" {
		t.Errorf("url = %q, want source target", snap.URL)
	}
	if snap.Platform != classify.PlatformInstagram {
		t.Errorf("platform = %q", snap.Platform)
	}
	if snap.PageType != classify.PageTypeProfile {
		t.Errorf("page type = %q", snap.PageType)
	}
	if snap.CapturedAt.IsZero() {
		t.Error("degraded snapshot missing timestamp")
	}
}

func TestBuildSnapshot_TruncatesText(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	html := "<html><body><main><p>" + long + "</p></main></body></html>"
	e := newTestExtractor(t, Config{MaxTextLen: 100})
	src := &page.StaticSource{URL: "https://example.com", HTML: html}

	snap := e.BuildSnapshot(context.Background(), src)
	if len(snap.VisibleText) > 100 {
		t.Fatalf("text len = %d, want <= 100", len(snap.VisibleText))
	}
	if strings.HasSuffix(snap.VisibleText, " ") {
		t.Error("truncated text not trimmed")
	}
}

func TestBuildSnapshot_NoLandmarkFallsBackToBody(t *testing.T) {
	html := "<html><body><div>plain page text</div></body></html>"
	e := newTestExtractor(t, Config{})
	src := &page.StaticSource{URL: "https://example.com", HTML: html}

	snap := e.BuildSnapshot(context.Background(), src)
	if !strings.Contains(snap.VisibleText, "plain page text") {
		t.Errorf("body fallback failed: %q", snap.VisibleText)
	}
}

func TestBuildSnapshot_HiddenTextExcluded(t *testing.T) {
	html := `<html><body><main><p>shown</p><p style="display:none">ghost</p></main></body></html>`
	e := newTestExtractor(t, Config{})
	src := &page.StaticSource{URL: "https://example.com", HTML: html}

	snap := e.BuildSnapshot(context.Background(), src)
	if strings.Contains(snap.VisibleText, "ghost") {
		t.Errorf("hidden text leaked: %q", snap.VisibleText)
	}
}

func TestBuildSnapshot_Markdown(t *testing.T) {
	html := `<html><body><main><h1>Heading</h1><p>Body text.</p></main></body></html>`
	e := newTestExtractor(t, Config{Markdown: true})
	src := &page.StaticSource{URL: "https://example.com", HTML: html}

	snap := e.BuildSnapshot(context.Background(), src)
	if !strings.Contains(snap.Markdown, "Heading") {
		t.Errorf("markdown missing heading: %q", snap.Markdown)
	}
}

func TestSnapshotEqual(t *testing.T) {
	base := func() *Snapshot {
		return &Snapshot{
			URL:         "https://example.com",
			Title:       "t",
			Platform:    classify.PlatformOther,
			PageType:    classify.PageTypeGeneral,
			VisibleText: "text",
			Metrics:     map[string]float64{"views": 10},
			CapturedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	a, b := base(), base()
	b.CapturedAt = b.CapturedAt.Add(time.Hour)
	if !a.Equal(b) {
		t.Error("snapshots differing only in CapturedAt must be equal")
	}

	b = base()
	b.VisibleText = "changed"
	if a.Equal(b) {
		t.Error("text change not detected")
	}

	b = base()
	b.Metrics = map[string]float64{"views": 11}
	if a.Equal(b) {
		t.Error("metric change not detected")
	}

	b = base()
	b.Metrics = map[string]float64{"views": 10, "likes": 1}
	if a.Equal(b) {
		t.Error("metric key addition not detected")
	}

	if a.Equal(nil) {
		t.Error("non-nil must not equal nil")
	}
}

func TestPagePayload(t *testing.T) {
	snap := &Snapshot{
		URL:         "https://www.instagram.com/p/abc/",
		Title:       "Post",
		Platform:    classify.PlatformInstagram,
		PageType:    classify.PageTypePost,
		VisibleText: "hello",
		Markdown:    "# hello",
		Metrics:     map[string]float64{"likes": 42},
		CapturedAt:  time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
	}
	p := snap.PagePayload()
	if p.PageType != "post" || p.Platform != "instagram" {
		t.Errorf("tags: %q %q", p.PageType, p.Platform)
	}
	if p.ScrapedContent["visible_text"] != "hello" {
		t.Errorf("visible_text = %v", p.ScrapedContent["visible_text"])
	}
	if p.ScrapedContent["content_markdown"] != "# hello" {
		t.Errorf("content_markdown = %v", p.ScrapedContent["content_markdown"])
	}
	if p.DetectedMetrics["likes"] != 42 {
		t.Errorf("metrics = %v", p.DetectedMetrics)
	}
	if p.ScrapedAt != "2026-08-23T10:30:00Z" {
		t.Errorf("scraped_at = %q", p.ScrapedAt)
	}
}
