package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"pms/internal/domain/auth"
	"pms/internal/platform/db"
	"pms/internal/platform/requestctx"
	"pms/internal/transport/http/api"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "pms_session"

type ctxKey string

const ctxKeySession ctxKey = "session"

type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (auth.Session, error)
}

// Auth resolves the bearer token (or session cookie) into an auth.Session.
// Requests without a valid session continue with the zero Session; domain
// operations reject them.
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := resolver.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, db.ErrConnection) {
					api.Fail(w, http.StatusServiceUnavailable, "service_unavailable", "session store unavailable", requestctx.GetRequestID(r.Context()))
					return
				}
				slog.Debug("session rejected", "err", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func WithSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, sess)
}

// GetSession returns the caller's session; the zero value means anonymous.
func GetSession(ctx context.Context) auth.Session {
	sess, _ := ctx.Value(ctxKeySession).(auth.Session)
	return sess
}
