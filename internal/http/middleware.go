package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	SessionCookie = "storefront_sid"
	SessionHeader = "X-Session-ID"
)

type sessionKey struct{}

// SessionMiddleware resolves the browser session from the cookie or the
// X-Session-ID header, issuing a new id when neither carries a valid one,
// and scopes the session stores into the request context.
func SessionMiddleware(sessions *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}

			s, err := sessions.Get(r.Context(), id)
			if errors.Is(err, session.ErrInvalidID) {
				s, err = sessions.Get(r.Context(), session.NewID())
			}
			if err != nil {
				logger.Error("failed to resolve session", "err", err)
				respondError(w, http.StatusServiceUnavailable, "session_unavailable", "session could not be started")
				return
			}

			if s.ID != id {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, s.ID)

			ctx := context.WithValue(s.Context(r.Context()), sessionKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

// RequestIDMiddleware echoes the request id assigned by chi.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}
