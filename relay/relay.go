// Package relay owns outbound delivery to the backend: connectivity
// state, periodic health polling, authenticated sends, and the
// in-memory retry queue. A caller handing it a payload always gets a
// definitive Outcome or has the attempt queued for replay; it is never
// blocked beyond one network round trip.
package relay

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Nikhileshpal145/creator-os-collector/credstore"
	"github.com/Nikhileshpal145/creator-os-collector/extract"
)

// Backend endpoints the coordinator talks to.
const (
	EndpointHealth        = "/health"
	EndpointSyncAnalytics = "/analytics/sync"
	EndpointSyncScraped   = "/analytics/sync/scraped"
	EndpointSyncPage      = "/scrape/page"
	EndpointStreamProfile = "/stream/profile"
)

// Config controls a Coordinator. Zero fields get defaults().
type Config struct {
	// BaseURL of the backend, without trailing slash.
	BaseURL string

	// Freshness is how long a positive health-check result is trusted
	// without re-probing. A negative result is never trusted; the next
	// use always re-probes.
	Freshness time.Duration

	// HealthTimeout bounds the health probe.
	HealthTimeout time.Duration

	// SendTimeout bounds each authenticated send.
	SendTimeout time.Duration

	// PollInterval is how often Run re-checks health.
	PollInterval time.Duration

	// Client overrides the HTTP client. Timeouts above are applied per
	// request via context, not on the client.
	Client *http.Client

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Freshness <= 0 {
		c.Freshness = 30 * time.Second
	}
	if c.HealthTimeout <= 0 {
		c.HealthTimeout = 5 * time.Second
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 15 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.Client == nil {
		c.Client = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// retryOp is one queued delivery: endpoint plus the already-marshaled
// payload, replayed on the next confirmed-online transition.
type retryOp struct {
	endpoint string
	body     []byte
}

// Coordinator is the process-wide sync coordinator. All state —
// connectivity, the retry queue, the dedup baseline — lives here,
// guarded by mu; network calls happen outside the lock.
type Coordinator struct {
	cfg   Config
	creds credstore.Store

	mu            sync.Mutex
	online        bool
	lastCheckedAt time.Time
	queue         []retryOp
	lastDelivered map[string]*extract.Snapshot // dedup baseline per page URL

	now func() time.Time
}

// New creates a Coordinator. It starts offline with an empty queue;
// state never survives a restart.
func New(cfg Config, creds credstore.Store) *Coordinator {
	cfg.defaults()
	return &Coordinator{
		cfg:           cfg,
		creds:         creds,
		lastDelivered: make(map[string]*extract.Snapshot),
		now:           time.Now,
	}
}

// Online reports the current connectivity flag without probing.
func (c *Coordinator) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// QueueLen reports the number of pending retry operations.
func (c *Coordinator) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// CheckHealth returns whether the backend is reachable. A positive
// result within the freshness window is returned from cache with no
// network call; a negative or stale result triggers a bounded probe.
// A probe that succeeds flips the state online and drains the retry
// queue.
func (c *Coordinator) CheckHealth(ctx context.Context) bool {
	c.mu.Lock()
	if c.online && c.now().Sub(c.lastCheckedAt) < c.cfg.Freshness {
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	online := c.probe(ctx)

	c.mu.Lock()
	c.online = online
	c.lastCheckedAt = c.now()
	c.mu.Unlock()

	if online {
		c.drain(ctx)
	}
	return online
}

func (c *Coordinator) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+EndpointHealth, nil)
	if err != nil {
		return false
	}
	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		c.cfg.Logger.Debug("relay: health probe failed", "error", err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Run polls health on a fixed interval until ctx is canceled. The
// first check runs immediately so the agent does not start a full
// interval blind.
func (c *Coordinator) Run(ctx context.Context) {
	c.CheckHealth(ctx)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckHealth(ctx)
		}
	}
}
