package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/httpx"

	"github.com/rs/zerolog"
)

const tooManyRequests = "Too many requests. Please try again later."

// Middleware limits requests per client address, taken from RemoteAddr.
// Behind a trusted proxy put it after chi's middleware.RealIP so the
// forwarded address is used; otherwise those headers are caller-controlled.
// When the store fails the request is let through and the error logged.
func Middleware(store Store, scope string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientIP(r)

			decision, err := store.Take(r.Context(), key, time.Now())
			if err != nil {
				log.Error().Err(err).Str("key", key).Msg("rate limit store unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				log.Warn().Str("key", key).Msg("rate limit exceeded")
				httpx.RespondWithError(w, http.StatusTooManyRequests, tooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr == "" {
		return "127.0.0.1"
	}
	return r.RemoteAddr
}
