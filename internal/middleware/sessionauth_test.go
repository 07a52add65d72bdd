package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCookieAuth(t *testing.T) {
	tests := []struct {
		name         string
		cookie       *http.Cookie
		expectedCode int
		expectedBody string
	}{
		{
			name:         "no cookie",
			cookie:       nil,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "empty cookie value",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: ""},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "wrong cookie name",
			cookie:       &http.Cookie{Name: "other", Value: "tok"},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "valid cookie",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: "tok"},
			expectedCode: http.StatusOK,
			expectedBody: "tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(GetSessionFromContext(r.Context())))
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			CookieAuth(next).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestGetSessionFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", GetSessionFromContext(req.Context()))
}

func TestWithRequestLogging_PassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WithRequestLogging(zap.NewNop())(next).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
