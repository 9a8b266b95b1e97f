package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RequireScope allows the request only when the token's scope covers the
// function named by the given URL parameter. Requests without claims pass:
// that is the auth-disabled setup, where Auth is not mounted.
func RequireScope(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if ok && !claims.Allows(chi.URLParam(r, param)) {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
