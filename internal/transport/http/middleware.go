package http

import (
	"errors"
	"net/http"

	"github.com/light-bringer/provenance-ledger/internal/platform/auth"
)

// authMiddleware attaches the bearer token's identity to the request context.
// Requests without a token pass through anonymously; a bad token is rejected.
func authMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := tokens.Verify(auth.BearerToken(r.Header.Get("Authorization")))
			switch {
			case err == nil:
				r = r.WithContext(auth.WithIdentity(r.Context(), identity))
			case errors.Is(err, auth.ErrMissingToken):
			default:
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid bearer token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireIdentity rejects requests that carry no verified identity.
func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "bearer token required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
