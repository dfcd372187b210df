package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"
)

const (
	csrfTokenLength = 32
	CSRFCookieName  = "csrf_token"
	CSRFHeaderName  = "X-CSRF-Token"
	csrfTokenExpiry = 24 * time.Hour
)

// CSRF guards requests authenticated by the session cookie with a
// double-submit token: safe requests receive a csrf_token cookie, and unsafe
// ones must echo it in the X-CSRF-Token header. Requests carrying an
// Authorization header, or no session cookie at all, pass through.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r)
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != "" || !hasSessionCookie(r) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(CSRFCookieName)
			if err != nil || cookie.Value == "" {
				writeStatus(w, http.StatusForbidden, "CSRF token missing")
				return
			}

			provided := r.Header.Get(CSRFHeaderName)
			if provided == "" {
				writeStatus(w, http.StatusForbidden, "CSRF token missing")
				return
			}

			if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(provided)) != 1 {
				writeStatus(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func hasSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(TokenCookie)
	return err == nil && cookie.Value != ""
}

func ensureCSRFCookie(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CSRFCookieName); err == nil && c.Value != "" {
		return
	}

	token, err := newCSRFToken()
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // read by the browser client to fill the header
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenExpiry.Seconds()),
	})
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
