package middleware

import (
	"net/http"

	"github.com/gatepasshq/gatepass-backend/pkg/auth/session"
)

// Session extracts the verified session id from the request cookie and seeds
// the context with it. It never rejects: routes that require a user layer
// RequireUser on top.
func Session(codec *session.CookieCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := codec.Read(r)
			ctx := WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
