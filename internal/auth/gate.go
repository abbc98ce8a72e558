package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aTrapDeer/portfolio-backend/internal/httpx"

	"github.com/rs/zerolog"
)

// HandlerFunc is a handler that needs an authenticated admin. It cannot be
// mounted on a router directly; Gate.Protect turns it into an
// http.HandlerFunc that only runs once a session has been resolved.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, session Session)

type contextKey string

const sessionKey contextKey = "session"

var errNoCredential = errors.New("no session credential")

// Gate resolves sessions from the session cookie or a bearer token.
type Gate struct {
	tokens     *Tokens
	cookieName string
	log        zerolog.Logger
}

func NewGate(tokens *Tokens, cookieName string, log zerolog.Logger) *Gate {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Gate{tokens: tokens, cookieName: cookieName, log: log}
}

func (g *Gate) Protect(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := g.resolve(r)
		if err != nil {
			g.log.Warn().Err(err).Str("path", r.URL.Path).Msg("unauthenticated request")
			httpx.RespondWithError(w, http.StatusUnauthorized, "Unauthorized - Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next(w, r.WithContext(ctx), session)
	}
}

// resolve returns the session of the first credential that parses. A stale
// cookie does not hide a valid bearer token.
func (g *Gate) resolve(r *http.Request) (Session, error) {
	credentials := g.credentials(r)
	if len(credentials) == 0 {
		return Session{}, errNoCredential
	}

	var lastErr error
	for _, token := range credentials {
		session, err := g.tokens.Parse(token)
		if err == nil {
			return session, nil
		}
		lastErr = err
	}
	return Session{}, lastErr
}

func (g *Gate) credentials(r *http.Request) []string {
	var tokens []string
	if cookie, err := r.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return tokens
	}
	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) == 2 && bearerToken[0] == "Bearer" && bearerToken[1] != "" {
		tokens = append(tokens, bearerToken[1])
	}
	return tokens
}

// SessionFromContext returns the session Protect stored on the request.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey).(Session)
	return session, ok
}
