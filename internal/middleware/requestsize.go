package middleware

import (
	"net/http"
)

const (
	// DefaultMaxRequestSize caps request bodies at 1MB. Task payloads are
	// tiny; anything near this limit is abuse, not a task.
	DefaultMaxRequestSize int64 = 1 << 20
)

// MaxRequestSize rejects oversized request bodies before handlers read them
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Reject early when the client declares the length up front
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			// Chunked bodies get cut off at the limit instead
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
