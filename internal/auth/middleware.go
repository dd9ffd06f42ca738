package auth

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "sessionid"

type contextKey struct{}

var userIDKey contextKey

// UserIDFromContext returns the user id resolved by LoadSession, or 0.
func UserIDFromContext(ctx context.Context) uint {
	id, _ := ctx.Value(userIDKey).(uint)
	return id
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// LoadSession resolves the session cookie into a user id on the request
// context. It never rejects a request; anonymous requests pass through.
func LoadSession(sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok, err := sessions.UserID(r.Context(), c.Value)
			if err != nil {
				log.Printf("Error resolving session: %v", err)
			}
			if ok {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser redirects requests without a resolved user to loginURL,
// passing the requested path as ?next=.
func RequireUser(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == 0 {
				target := loginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
