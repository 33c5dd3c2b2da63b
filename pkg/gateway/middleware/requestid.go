package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID is honored when the client supplies its own ID, so a
// request can be traced across the client, the gateway, and the backend.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware assigns every request an ID, preferring the client's.
// The ID is stored in the request context and echoed on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}
