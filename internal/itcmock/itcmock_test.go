package itcmock

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itckit/tfinvite/internal/models"
)

func testConfig() Config {
	return Config{
		Login:      "dev@example.com",
		Password:   "hunter2",
		ServiceKey: "widget-key-1",
		ProviderID: "11142800",
		AppID:      "987654321",
	}
}

func newTestServer(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()
	store := NewStore(testConfig())
	srv := httptest.NewServer(NewRouter(store, zap.NewNop()))
	t.Cleanup(srv.Close)
	return store, srv
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name         string
		widgetKey    string
		body         string
		expectedCode int
		wantCookie   bool
	}{
		{
			name:         "wrong widget key",
			widgetKey:    "bogus",
			body:         `{"accountName":"dev@example.com","password":"hunter2","rememberMe":false}`,
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "invalid JSON",
			widgetKey:    "widget-key-1",
			body:         `not json`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "wrong password",
			widgetKey:    "widget-key-1",
			body:         `{"accountName":"dev@example.com","password":"wrong","rememberMe":false}`,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "valid credentials",
			widgetKey:    "widget-key-1",
			body:         `{"accountName":"dev@example.com","password":"hunter2","rememberMe":false}`,
			expectedCode: http.StatusOK,
			wantCookie:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestServer(t)

			req, err := http.NewRequest(http.MethodPost,
				srv.URL+"/appleauth/auth/signin?widgetKey="+tt.widgetKey,
				strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedCode, resp.StatusCode)
			if tt.wantCookie {
				setCookie := resp.Header.Get("Set-Cookie")
				assert.Contains(t, setCookie, "myacinfo=")
				assert.Contains(t, setCookie, `Version="1"`)
			}
		})
	}
}

func TestProtectedRoutesRequireCookie(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/WebObjects/iTunesConnect.woa/ra/user/detail")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTester_Duplicate(t *testing.T) {
	store, srv := newTestServer(t)
	store.AddGroup(models.Group{ID: "g1", Name: "External", IsDefaultExternalGroup: true})

	_, created := store.AddTester("a@b.com", "A", "B")
	require.True(t, created)

	req, err := http.NewRequest(http.MethodPost,
		srv.URL+"/testflight/v2/providers/11142800/apps/987654321/testers",
		strings.NewReader(`{"email":"a@b.com","firstName":"A","lastName":"B"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "myacinfo", Value: "session"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStore_RequestLog(t *testing.T) {
	store, srv := newTestServer(t)

	_, err := http.Get(srv.URL + "/itc/static-resources/controllers/login_cntrl.js")
	require.NoError(t, err)
	_, err = http.Get(srv.URL + "/itc/static-resources/controllers/login_cntrl.js")
	require.NoError(t, err)

	assert.Equal(t, 2, store.CountRequests("GET /itc/static-resources/controllers/login_cntrl.js"))
	assert.Len(t, store.Requests(), 2)
}
