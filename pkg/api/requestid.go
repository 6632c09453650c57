package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/strathub/strathub-service/log"
)

const requestIDHeader = "X-Request-ID"

// requestID passes on the id of the caller or creates a new one.
// The request context carries a logger with the id.
func requestID(l *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := log.AddToContext(r.Context(), l.With(log.String("requestId", id)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
