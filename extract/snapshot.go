package extract

import (
	"time"

	"github.com/Nikhileshpal145/creator-os-collector/classify"
)

// Snapshot is the normalized representation of a page's extractable
// content at one point in time. Immutable once built.
type Snapshot struct {
	URL         string
	Title       string
	Platform    classify.Platform
	PageType    classify.PageType
	VisibleText string
	Markdown    string
	Metrics     map[string]float64
	CapturedAt  time.Time
}

// Equal reports whether two snapshots carry identical content. CapturedAt
// is deliberately excluded: dedup is content-based, and the capture
// timestamp changes on every cycle.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.URL != other.URL ||
		s.Title != other.Title ||
		s.Platform != other.Platform ||
		s.PageType != other.PageType ||
		s.VisibleText != other.VisibleText ||
		s.Markdown != other.Markdown {
		return false
	}
	if len(s.Metrics) != len(other.Metrics) {
		return false
	}
	for k, v := range s.Metrics {
		ov, ok := other.Metrics[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// PagePayload is the wire schema for POST /scrape/page.
type PagePayload struct {
	URL             string             `json:"url"`
	Title           string             `json:"title"`
	PageType        string             `json:"page_type"`
	Platform        string             `json:"platform"`
	ScrapedContent  map[string]any     `json:"scraped_content"`
	DetectedMetrics map[string]float64 `json:"detected_metrics"`
	ScrapedAt       string             `json:"scraped_at"`
}

// PagePayload maps the snapshot onto the backend's scrape schema.
func (s *Snapshot) PagePayload() PagePayload {
	content := map[string]any{
		"visible_text": s.VisibleText,
	}
	if s.Markdown != "" {
		content["content_markdown"] = s.Markdown
	}
	metrics := s.Metrics
	if metrics == nil {
		metrics = map[string]float64{}
	}
	return PagePayload{
		URL:             s.URL,
		Title:           s.Title,
		PageType:        string(s.PageType),
		Platform:        string(s.Platform),
		ScrapedContent:  content,
		DetectedMetrics: metrics,
		ScrapedAt:       s.CapturedAt.UTC().Format(time.RFC3339),
	}
}
