package http

import (
	"context"
	"net/http"
	"time"

	"duit/internal/auth"
	"duit/internal/core"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "token"

type contextKey string

const claimsKey contextKey = "session_claims"

// setSessionCookie writes the session token with a lifetime matching
// the token's own validity window.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie tells the client to discard the token. The token
// itself stays valid until expiry, there is no server-side revocation.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireAuth verifies the session cookie and binds the claims into the
// request context. It is the single place identity is established;
// handlers behind it read the user from claimsFromContext.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondError(w, r, core.ErrUnauthenticated)
			return
		}

		claims, err := s.tokens.Verify(cookie.Value)
		if err != nil {
			respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}
