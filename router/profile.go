package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Nikhileshpal145/creator-os-collector/relay"
)

// ProfileState is a step in the profile-analysis workflow.
type ProfileState string

const (
	ProfileIdle            ProfileState = "idle"
	ProfileAwaitingPage    ProfileState = "awaiting_active_page"
	ProfileAwaitingExtract ProfileState = "awaiting_extraction"
	ProfileAwaitingBackend ProfileState = "awaiting_backend"
	ProfileDone            ProfileState = "done"
	ProfileFailed          ProfileState = "failed"
)

// profileRun walks Idle → AwaitingActivePage → AwaitingExtraction →
// AwaitingBackend → Done, moving straight to Failed on any step's
// error. There is no automatic retry: the caller triggered this
// explicitly and gets one answer.
type profileRun struct {
	deps  Deps
	state ProfileState
}

func (d Deps) analyzeProfile(ctx context.Context, _ json.RawMessage) (any, error) {
	run := &profileRun{deps: d, state: ProfileIdle}
	return run.execute(ctx)
}

func (r *profileRun) execute(ctx context.Context) (any, error) {
	r.state = ProfileAwaitingPage
	if r.deps.Source == nil {
		return r.fail(errors.New("no active page found"))
	}
	doc, err := r.deps.Source.Load(ctx)
	if err != nil {
		return r.fail(fmt.Errorf("no active page found: %v", err))
	}

	r.state = ProfileAwaitingExtract
	snap := r.deps.Extractor.FromDocument(doc)
	if snap.VisibleText == "" && len(snap.Metrics) == 0 {
		return r.fail(errors.New("extraction produced no content"))
	}

	r.state = ProfileAwaitingBackend
	out := r.deps.Coordinator.Send(ctx, relay.EndpointStreamProfile, snap.PagePayload())
	if !out.Delivered() {
		if out.Status == relay.StatusSessionExpired {
			return r.fail(errors.New("session expired, please log in again"))
		}
		if out.Status == relay.StatusUnauthenticated {
			return r.fail(errors.New("not authenticated"))
		}
		return r.fail(fmt.Errorf("backend request failed: %s", out.Err))
	}

	r.state = ProfileDone
	var data any
	if len(out.Body) > 0 {
		if err := json.Unmarshal(out.Body, &data); err != nil {
			data = string(out.Body)
		}
	}
	return map[string]any{"state": string(r.state), "analysis": data}, nil
}

func (r *profileRun) fail(err error) (any, error) {
	r.state = ProfileFailed
	return nil, err
}
