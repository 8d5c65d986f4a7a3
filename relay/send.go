package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Nikhileshpal145/creator-os-collector/credstore"
	"github.com/Nikhileshpal145/creator-os-collector/extract"
)

// responses larger than this are treated as a transport fault.
const maxResponseBytes = 4 << 20

// Send delivers payload to endpoint with the stored bearer token.
//
// No token: StatusUnauthenticated, no request issued — a missing login
// is a precondition failure, not a retryable fault. Connectivity is
// checked opportunistically before every send; a known-offline backend
// queues the operation immediately instead of burning a send timeout
// on a doomed POST. 401: the token was rejected, StatusSessionExpired.
// A transport-level error (timeout, refusal, DNS) queues the operation
// for replay on the next confirmed online transition and returns
// StatusTransportFailure. Any other non-2xx status is
// StatusTransportFailure without queueing: the service saw the request
// and refused it, so replaying the same bytes would only fail again.
func (c *Coordinator) Send(ctx context.Context, endpoint string, payload any) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return transportFailure(fmt.Sprintf("marshal payload: %v", err))
	}

	token, ok, err := c.creds.Get(ctx, credstore.KeyAuthToken)
	if err != nil {
		return transportFailure(fmt.Sprintf("read token: %v", err))
	}
	if !ok || token == "" {
		return Outcome{Status: StatusUnauthenticated}
	}

	if !c.CheckHealth(ctx) {
		c.enqueue(retryOp{endpoint: endpoint, body: body})
		c.cfg.Logger.Info("relay: backend offline, send queued",
			"endpoint", endpoint, "queue_len", c.QueueLen())
		return transportFailure("backend offline")
	}

	out := c.post(ctx, endpoint, body, token)
	if out.Status == StatusTransportFailure && out.retryable {
		c.enqueue(retryOp{endpoint: endpoint, body: body})
		c.cfg.Logger.Info("relay: send queued for retry",
			"endpoint", endpoint, "queue_len", c.QueueLen())
	}
	return out
}

// SyncSnapshot delivers a page snapshot, suppressing sends whose
// content is identical to the last delivered snapshot of the same URL.
// Baselines are kept per URL: one coordinator serves every configured
// page, and page A changing must never force a resend of unchanged
// page B. A baseline only advances on StatusDelivered, so a snapshot
// that failed to send is retried in full on the next cycle.
func (c *Coordinator) SyncSnapshot(ctx context.Context, snap *extract.Snapshot) Outcome {
	c.mu.Lock()
	if snap.Equal(c.lastDelivered[snap.URL]) {
		c.mu.Unlock()
		c.cfg.Logger.Debug("relay: snapshot unchanged, skipping", "url", snap.URL)
		return Outcome{Status: StatusSkipped}
	}
	c.mu.Unlock()

	out := c.Send(ctx, EndpointSyncPage, snap.PagePayload())
	if out.Delivered() {
		c.mu.Lock()
		c.lastDelivered[snap.URL] = snap
		c.mu.Unlock()
	}
	return out
}

// post issues one authenticated POST and maps the result to an
// Outcome. It never touches the retry queue; Send decides that.
func (c *Coordinator) post(ctx context.Context, endpoint string, body []byte, token string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return transportFailure(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		out := transportFailure(err.Error())
		out.retryable = true
		return out
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Outcome{Status: StatusSessionExpired}
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		out := transportFailure(fmt.Sprintf("read response: %v", err))
		out.retryable = true
		return out
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transportFailure(fmt.Sprintf("%s returned %d", endpoint, resp.StatusCode))
	}
	return delivered(respBody)
}

// enqueue appends op to the retry queue. Duplicates are allowed; the
// snapshot dedup upstream is the primary duplicate suppressor.
func (c *Coordinator) enqueue(op retryOp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, op)
}

// drain replays queued operations strictly in FIFO order. The online
// flag is re-checked before every item rather than assumed for the
// whole drain, since a concurrent health check can flip it mid-way. A
// replay that fails is dropped, not re-enqueued — the queue must never
// grow without bound or block the drain.
func (c *Coordinator) drain(ctx context.Context) {
	for {
		c.mu.Lock()
		if !c.online || len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		op := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		token, ok, err := c.creds.Get(ctx, credstore.KeyAuthToken)
		if err != nil || !ok || token == "" {
			c.cfg.Logger.Warn("relay: dropping queued send, no token",
				"endpoint", op.endpoint)
			continue
		}
		out := c.post(ctx, op.endpoint, op.body, token)
		if !out.Delivered() {
			c.cfg.Logger.Warn("relay: queued send failed, dropping",
				"endpoint", op.endpoint, "status", string(out.Status), "error", out.Err)
		}
	}
}
