package api

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds every request with a context deadline. Repository
// and storage calls receive the request context, so they give up once the
// deadline passes and the handler reports the failure.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
