package httpapi

import (
	"context"
	"net/http"

	"github.com/whrrk/eduplatform/pkg/auth"
)

// Dev identity headers honored by the local server. In the deployed
// setup identity arrives as authorizer claims on the gateway event and
// these headers are never consulted.
const (
	HeaderUserID = "X-User-Id"
	HeaderGroups = "X-User-Groups"
)

type ctxKey int

const authCtxKey ctxKey = iota

// withAuthContext derives the request auth context from the dev
// identity headers and stores it on the request context. Absent headers
// resolve to the anonymous/UNKNOWN identity, not an error.
func withAuthContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := map[string]any{}
		if v := r.Header.Get(HeaderUserID); v != "" {
			claims[auth.ClaimUsername] = v
		}
		if v := r.Header.Get(HeaderGroups); v != "" {
			claims[auth.ClaimGroups] = v
		}

		ac := auth.FromClaims(claims)
		ctx := context.WithValue(r.Context(), authCtxKey, ac)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authContext returns the auth context stored by withAuthContext.
func authContext(r *http.Request) auth.Context {
	if ac, ok := r.Context().Value(authCtxKey).(auth.Context); ok {
		return ac
	}
	return auth.FromClaims(nil)
}

// corsMiddleware attaches the CORS header set to every response and
// short-circuits OPTIONS preflights to 204 with headers only.
func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-User-Id,X-User-Groups")
			h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
