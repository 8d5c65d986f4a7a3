package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Nikhileshpal145/creator-os-collector/credstore"
	"github.com/Nikhileshpal145/creator-os-collector/extract"
	"github.com/Nikhileshpal145/creator-os-collector/history"
	"github.com/Nikhileshpal145/creator-os-collector/page"
	"github.com/Nikhileshpal145/creator-os-collector/relay"
)

// Recognized action tags.
const (
	ActionSyncAnalytics        = "sync_analytics"
	ActionSyncScrapedAnalytics = "sync_scraped_analytics"
	ActionSyncPage             = "sync_page"
	ActionCaptureScreen        = "capture_screen"
	ActionExtractPage          = "extract_page"
	ActionAnalyzeProfile       = "analyze_profile"
	ActionAuthStatus           = "auth_status"
	ActionLogout               = "logout"
	ActionScrapeHistory        = "scrape_history"
)

// Sender is the coordinator surface the router needs. Implemented by
// *relay.Coordinator.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload any) relay.Outcome
	SyncSnapshot(ctx context.Context, snap *extract.Snapshot) relay.Outcome
	Online() bool
	QueueLen() int
}

// Capturer produces a screenshot of the active page, base64-encoded.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

// Deps wires the agent's components into the standard action set.
// Source and Capturer may be nil; the corresponding actions then fail
// with a descriptive error instead of being unregistered, so callers
// can tell "not supported here" from "unknown action".
type Deps struct {
	Coordinator Sender
	Extractor   *extract.Extractor
	Source      page.Source
	Capturer    Capturer
	Creds       credstore.Store
	History     *history.Store
	Logger      *slog.Logger
}

// NewAgentRouter builds a Router with the full collector action set.
func NewAgentRouter(d Deps) *Router {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r := New(WithLogger(d.Logger))

	r.Register(ActionSyncAnalytics, d.forwardTo(relay.EndpointSyncAnalytics))
	r.Register(ActionSyncScrapedAnalytics, d.forwardTo(relay.EndpointSyncScraped))
	r.Register(ActionSyncPage, d.forwardTo(relay.EndpointSyncPage))
	r.Register(ActionAnalyzeProfile, d.analyzeProfile)
	r.Register(ActionAuthStatus, d.authStatus)
	r.Register(ActionLogout, d.logout)
	r.Register(ActionScrapeHistory, d.scrapeHistory)
	r.RegisterRaw(ActionCaptureScreen, d.captureScreen)
	r.RegisterRaw(ActionExtractPage, d.extractPage)

	return r
}

// forwardTo relays the caller's payload verbatim to a backend endpoint
// and maps the delivery outcome to a handler result.
func (d Deps) forwardTo(endpoint string) Handler {
	return func(ctx context.Context, payload json.RawMessage) (any, error) {
		if len(payload) == 0 {
			return nil, errors.New("missing payload")
		}
		return outcomeResult(d.Coordinator.Send(ctx, endpoint, payload))
	}
}

func outcomeResult(out relay.Outcome) (any, error) {
	switch out.Status {
	case relay.StatusDelivered:
		var data any
		if len(out.Body) > 0 {
			if err := json.Unmarshal(out.Body, &data); err != nil {
				data = string(out.Body)
			}
		}
		return data, nil
	case relay.StatusSkipped:
		return map[string]any{"skipped": true}, nil
	case relay.StatusUnauthenticated:
		return nil, errors.New("not authenticated")
	case relay.StatusSessionExpired:
		return nil, errors.New("session expired, please log in again")
	default:
		if out.Err != "" {
			return nil, fmt.Errorf("sync failed: %s", out.Err)
		}
		return nil, errors.New("sync failed")
	}
}

// captureResult is the custom shape for capture_screen.
type captureResult struct {
	Image string `json:"image"`
}

func (d Deps) captureScreen(ctx context.Context, _ json.RawMessage) (any, error) {
	if d.Capturer == nil {
		return nil, errors.New("screen capture not available")
	}
	img, err := d.Capturer.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}
	return captureResult{Image: img}, nil
}

// extractResult is the custom shape for extract_page.
type extractResult struct {
	Payload extract.PagePayload `json:"payload"`
}

func (d Deps) extractPage(ctx context.Context, _ json.RawMessage) (any, error) {
	if d.Source == nil {
		return nil, errors.New("no active page source")
	}
	snap := d.Extractor.BuildSnapshot(ctx, d.Source)
	return extractResult{Payload: snap.PagePayload()}, nil
}

type authStatusResult struct {
	credstore.TokenInfo
	Online   bool `json:"online"`
	QueueLen int  `json:"queue_len"`
}

func (d Deps) authStatus(ctx context.Context, _ json.RawMessage) (any, error) {
	token, _, err := d.Creds.Get(ctx, credstore.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return authStatusResult{
		TokenInfo: credstore.InspectToken(token),
		Online:    d.Coordinator.Online(),
		QueueLen:  d.Coordinator.QueueLen(),
	}, nil
}

func (d Deps) logout(ctx context.Context, _ json.RawMessage) (any, error) {
	if err := d.Creds.Remove(ctx, credstore.KeyAuthToken, credstore.KeySessionUser); err != nil {
		return nil, fmt.Errorf("clear credentials: %w", err)
	}
	return map[string]any{"logged_out": true}, nil
}

type scrapeHistoryPayload struct {
	Limit int `json:"limit"`
}

func (d Deps) scrapeHistory(ctx context.Context, payload json.RawMessage) (any, error) {
	if d.History == nil {
		return nil, errors.New("history not available")
	}
	var p scrapeHistoryPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("bad payload: %w", err)
		}
	}
	entries, err := d.History.Recent(ctx, p.Limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return entries, nil
}
