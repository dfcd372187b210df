package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return CSRF()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRF_SafeMethodSetsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CSRFCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestCSRF_UnsafeRequests(t *testing.T) {
	session := &http.Cookie{Name: TokenCookie, Value: "session"}
	csrf := &http.Cookie{Name: CSRFCookieName, Value: "abc123"}

	tests := []struct {
		name    string
		cookies []*http.Cookie
		header  map[string]string
		want    int
	}{
		{"bearer requests are exempt", []*http.Cookie{session}, map[string]string{"Authorization": "Bearer x"}, http.StatusOK},
		{"no session cookie", nil, nil, http.StatusOK},
		{"missing csrf cookie", []*http.Cookie{session}, map[string]string{CSRFHeaderName: "abc123"}, http.StatusForbidden},
		{"missing header", []*http.Cookie{session, csrf}, nil, http.StatusForbidden},
		{"mismatched header", []*http.Cookie{session, csrf}, map[string]string{CSRFHeaderName: "nope"}, http.StatusForbidden},
		{"matching header", []*http.Cookie{session, csrf}, map[string]string{CSRFHeaderName: "abc123"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/documents/1", nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			csrfHandler().ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
