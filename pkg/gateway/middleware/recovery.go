package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"hermod-hq/hermod/pkg/rpc"
)

// RecoveryMiddleware converts a handler panic into a JSON-RPC internal error
// response instead of tearing down the connection.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic while handling request",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(rpc.NewError(rpc.NullID, rpc.CodeInternalError, "internal gateway error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
