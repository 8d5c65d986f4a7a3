// Package router dispatches inbound requests — from the local HTTP
// endpoint, MCP tools, or anything else that can produce a Request —
// to the coordinator and extractor, translating internal outcomes into
// a uniform response shape.
package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Request is the inbound message contract: an action tag plus an
// action-specific payload.
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the uniform reply shape for most actions. A few actions
// (screen capture, page extraction) return a custom shape instead;
// those are registered with RegisterRaw.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler processes one action's payload. The returned value is
// wrapped in a Response for handlers added with Register, or returned
// as-is for handlers added with RegisterRaw.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Router maps action tags to handlers. Dispatch on an unknown action
// reports unhandled rather than producing an error response, matching
// the contract that unrecognized messages are ignored.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	raw      map[string]bool
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New creates an empty Router.
func New(opts ...Option) *Router {
	r := &Router{
		handlers: make(map[string]Handler),
		raw:      make(map[string]bool),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds a handler whose result is wrapped in the uniform
// {success, data, error} shape.
func (r *Router) Register(action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = h
}

// RegisterRaw adds a handler whose result is returned to the caller
// unwrapped. Errors are still translated into a Response.
func (r *Router) RegisterRaw(action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = h
	r.raw[action] = true
}

// Actions returns the registered action tags.
func (r *Router) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for a := range r.handlers {
		out = append(out, a)
	}
	return out
}

// Dispatch routes one request. handled is false for unknown actions;
// the caller decides what "ignored" means on its transport (the HTTP
// endpoint answers 404 with an empty body). A handled action always
// yields exactly one non-nil result.
func (r *Router) Dispatch(ctx context.Context, req Request) (result any, handled bool) {
	r.mu.RLock()
	h, ok := r.handlers[req.Action]
	isRaw := r.raw[req.Action]
	r.mu.RUnlock()
	if !ok {
		r.logger.Debug("router: unknown action ignored", "action", req.Action)
		return nil, false
	}

	data, err := h(ctx, req.Payload)
	if err != nil {
		r.logger.Warn("router: action failed", "action", req.Action, "error", err)
		return Response{Success: false, Error: err.Error()}, true
	}
	if isRaw {
		return data, true
	}
	return Response{Success: true, Data: data}, true
}
