// Package gateway ties the pieces together: the HTTP server the client
// connects to, the routing between local actions and the backend, and the
// status surface.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hermod-hq/hermod/pkg/backend"
	"hermod-hq/hermod/pkg/editor"
	"hermod-hq/hermod/pkg/rpc"
	"hermod-hq/hermod/pkg/telemetry/metrics"
)

// Forwarder relays an opaque request body to the backend.
type Forwarder interface {
	Forward(ctx context.Context, body []byte) ([]byte, error)
	Address() string
}

// Router decides, per request, whether the gateway answers locally or the
// backend does.
type Router struct {
	forwarder Forwarder
	editor    *editor.Handler
	metrics   *metrics.Collector
}

// NewRouter creates a router. mc may be nil.
func NewRouter(forwarder Forwarder, handler *editor.Handler, mc *metrics.Collector) *Router {
	return &Router{
		forwarder: forwarder,
		editor:    handler,
		metrics:   mc,
	}
}

// Route processes one request body and always returns a response body.
//
// Window-focus actions are answered locally without touching the backend:
// they must work precisely when the backend is down or busy. Everything
// else — including bodies that do not parse as an envelope — is forwarded
// byte-for-byte; the backend owns protocol-level rejection.
func (rt *Router) Route(ctx context.Context, body []byte) []byte {
	req, parseErr := rpc.ParseRequest(body)
	if parseErr != nil {
		slog.Debug("request body is not a JSON-RPC envelope, forwarding as-is", "error", parseErr)
	}

	if req != nil {
		if action, args, ok := editor.MatchAction(req); ok {
			rt.metrics.RecordRequest("local")
			slog.Debug("handling window action locally",
				"action", action,
				"id", string(req.CorrelationID()),
			)
			result := rt.editor.Handle(action, args)
			return rpc.NewResult(req.CorrelationID(), editor.ContentResult(result))
		}
	}

	rt.metrics.RecordRequest("forward")

	out, err := rt.forwarder.Forward(ctx, body)
	if err != nil {
		return rt.errorResponse(req, err)
	}
	return out
}

// errorResponse builds the envelope for a failed forward, echoing the
// caller's correlation ID when one was readable.
func (rt *Router) errorResponse(req *rpc.Request, err error) []byte {
	id := rpc.NullID
	if req != nil {
		id = req.CorrelationID()
	}

	var unreachable *backend.UnreachableError
	if errors.As(err, &unreachable) {
		slog.Error("backend unreachable, giving up",
			"address", unreachable.Address,
			"attempts", unreachable.Attempts,
		)
		message := fmt.Sprintf("backend not reachable at %s. Is the editor running?", unreachable.Address)
		return rpc.NewError(id, rpc.CodeBackendUnreachable, message)
	}

	slog.Error("failed to forward request", "address", rt.forwarder.Address(), "error", err)
	return rpc.NewError(id, rpc.CodeBackendUnreachable, err.Error())
}
