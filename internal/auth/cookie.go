package auth

import (
	"net/http"
	"time"
)

const DefaultCookieName = "session"

type CookieOptions struct {
	Name string
	// Secure cookies require HTTPS, enable for production.
	Secure bool
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return DefaultCookieName
	}
	return o.Name
}

func SetSessionCookie(w http.ResponseWriter, opts CookieOptions, token string, expiresAt time.Time) {
	sameSite := http.SameSiteStrictMode
	if !opts.Secure {
		sameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     opts.name(),
		Value:    token,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: sameSite,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.name(),
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
