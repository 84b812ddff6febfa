package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/session"
)

// sessionContextKey is the context key type for the authenticated session.
type sessionContextKey struct{}

// SessionFromContext returns the authenticated session, or nil outside the
// auth middleware.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess
}

// SessionAuth gates routes behind a valid session token. The token comes
// from the Authorization bearer header or, for download links the browser
// opens directly, the "session" query parameter. The resolved session is
// placed on the request context, so handlers never consult process-wide
// state.
func SessionAuth(store *session.Store, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("session")
			}
			if token == "" {
				apierrors.WriteError(w, apierrors.ErrUnauthorized)
				return
			}

			sess, err := store.Get(token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected unknown session token",
					slog.String("path", r.URL.Path))
				apierrors.WriteError(w, apierrors.ErrSessionExpired)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
