package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"shootdesk-backend/internal/access"
	"shootdesk-backend/internal/services"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookieName is the cookie that carries the session token for browser clients
const SessionCookieName = "session_token"

// Authenticator resolves a token to a live session
type Authenticator interface {
	Authenticate(token string) (*services.Session, error)
}

// TokenFromRequest extracts the session token from the Authorization header or the session cookie
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Resolve attaches the session to the context when the request carries a valid token.
// Requests without one pass through anonymously.
func Resolve(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := TokenFromRequest(r); token != "" {
				if session, err := auth.Authenticate(token); err == nil {
					r = r.WithContext(WithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware rejects requests without a valid session
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				respondError(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			session, err := auth.Authenticate(token)
			if err != nil {
				respondError(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAction rejects sessions whose role may not perform action
func RequireAction(action access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r.Context())
			if session == nil {
				respondError(w, "Authorization required", http.StatusUnauthorized)
				return
			}
			if !access.Allowed(session.Role, action) {
				respondError(w, "Your role cannot perform this action", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession stores a session in the context
func WithSession(ctx context.Context, session *services.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSession extracts the session from context
func GetSession(ctx context.Context) *services.Session {
	session, ok := ctx.Value(sessionKey).(*services.Session)
	if !ok {
		return nil
	}
	return session
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
