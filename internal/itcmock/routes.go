package itcmock

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/itckit/tfinvite/internal/middleware"
)

// NewRouter constructs the mock backend handler. The login controller
// script and the sign-in endpoint are open; everything else requires the
// session cookie issued by SignIn.
//
// Routes:
//
//	GET  /itc/static-resources/controllers/login_cntrl.js
//	POST /appleauth/auth/signin
//	GET  /WebObjects/iTunesConnect.woa/ra/user/detail
//	GET  /WebObjects/iTunesConnect.woa/ra/user/externalTesters/{appID}/
//	POST /WebObjects/iTunesConnect.woa/ra/user/externalTesters/{appID}/
//	GET  /testflight/v2/providers/{providerID}/apps/{appID}/groups
//	POST /testflight/v2/providers/{providerID}/apps/{appID}/testers
//	PUT  /testflight/v2/providers/{providerID}/apps/{appID}/groups/{groupID}/testers/{testerID}
func NewRouter(store *Store, logger *zap.Logger) http.Handler {
	h := &Handler{Store: store}

	r := chi.NewRouter()
	r.Use(recordRequests(store))
	r.Use(middleware.WithRequestLogging(logger))

	// Open endpoints: the script scrape and the sign-in handshake.
	r.Get("/itc/static-resources/controllers/login_cntrl.js", h.LoginScript)
	r.Post("/appleauth/auth/signin", h.SignIn)

	// Protected group: requires the session cookie.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CookieAuth)

		r.Get("/WebObjects/iTunesConnect.woa/ra/user/detail", h.UserDetail)
		r.Get("/WebObjects/iTunesConnect.woa/ra/user/externalTesters/{appID}/", h.ListExternalTesters)
		r.Post("/WebObjects/iTunesConnect.woa/ra/user/externalTesters/{appID}/", h.UpdateExternalTesters)

		r.Route("/testflight/v2/providers/{providerID}/apps/{appID}", func(r chi.Router) {
			r.Get("/groups", h.ListGroups)
			r.Post("/testers", h.CreateTester)
			r.Put("/groups/{groupID}/testers/{testerID}", h.AssignTester)
		})
	})

	return r
}

// recordRequests appends every request to the store's request log so
// tests can assert on call counts and ordering.
func recordRequests(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store.record(r.Method + " " + r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
