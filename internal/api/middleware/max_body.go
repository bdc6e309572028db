package middleware

import (
	"fmt"
	"net/http"

	"github.com/cloo-solutions/lectern/internal/api"
)

// MaxBodyBytes caps the request body at limit bytes. A declared
// Content-Length over the limit is refused before the handler runs; bodies
// without one are wrapped so the handler sees *http.MaxBytesError on overrun.
// A limit of zero or less disables the check.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.ErrorWithDetails(w, http.StatusRequestEntityTooLarge, "request body too large",
					fmt.Sprintf("limit is %d bytes, got %d", limit, r.ContentLength))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
