package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/classfund/classfund/internal/auth"
	"github.com/classfund/classfund/internal/handler"
	"github.com/classfund/classfund/internal/model"
)

// SessionReader resolves a session token to its session.
type SessionReader interface {
	Session(ctx context.Context, token string) (*model.Session, error)
}

// AuthConfig holds configuration for the session middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Sessions SessionReader
}

// RequireSession returns a middleware that authenticates requests by
// session token, from the session cookie or an Authorization bearer
// header. Unauthenticated requests are rejected with 401; the session
// is injected into the request context otherwise.
func RequireSession(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := handler.SessionToken(r)
			if token == "" {
				writeSessionError(w)
				return
			}

			session, err := cfg.Sessions.Session(r.Context(), token)
			if err != nil || session == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_session"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeSessionError(w)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeSessionError answers 401 with the same body for every auth
// failure so responses do not reveal which tokens exist.
func writeSessionError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Sign in to continue","code":"loggedin"}`))
}
