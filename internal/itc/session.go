// Package itc implements the iTunes Connect session protocol used to
// invite TestFlight beta testers: service-key scraping, the idmsa sign-in
// handshake, account-linkage inference and the two-phase tester invite.
//
// There is no stable public API for this workflow; the package reproduces
// the network behavior of the web console, cookies and all. A Session owns
// its HTTP client and cookie jar for its whole lifetime and is never
// persisted across process runs.
package itc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"go.uber.org/zap"

	"github.com/itckit/tfinvite/internal/models"
)

const (
	defaultBaseURL     = "https://itunesconnect.apple.com"
	defaultAuthBaseURL = "https://idmsa.apple.com"

	loginScriptPath = "/itc/static-resources/controllers/login_cntrl.js"
	signinPath      = "/appleauth/auth/signin"
	userDetailPath  = "/WebObjects/iTunesConnect.woa/ra/user/detail"
)

// serviceKeyPattern matches the widget key assignment embedded in the
// login controller script.
var serviceKeyPattern = regexp.MustCompile(`itcServiceKey = '(.*)'`)

// duplicateMarker matches backend error bodies that describe an
// already-invited email.
var duplicateMarker = regexp.MustCompile(`(?i)already|duplicate`)

// Options configures a Session.
type Options struct {
	// Login is the iTunes Connect account email.
	Login string
	// Password is the account password.
	Password string
	// AppID identifies the application whose beta program is managed.
	AppID string

	// ContentProviderID is the team identifier. Inferred from the account
	// profile during login when empty.
	ContentProviderID string
	// GroupID is the destination tester group. Inferred as the default
	// external group during login when empty.
	GroupID string

	// Proxy is an optional outbound proxy address (http, https or socks5).
	Proxy string

	// BaseURL overrides the iTunes Connect host, for tests.
	BaseURL string
	// AuthBaseURL overrides the identity provider host, for tests.
	AuthBaseURL string

	// Logger receives inference diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
	// Client overrides the owned HTTP client. When set, Proxy is ignored
	// and the caller is responsible for cookie handling.
	Client *http.Client
}

// Session is an authenticated-request channel to the TestFlight backend.
// It lazily acquires the service key, signs in and resolves account
// linkage on first use. A Session must not be shared across goroutines;
// independent Sessions share nothing and may run concurrently.
type Session struct {
	login    string
	password string
	appID    string

	baseURL     string
	authBaseURL string

	client *http.Client
	log    *zap.Logger

	serviceKey    string
	providerID    string
	groupID       string
	groupResolved bool
	authenticated bool
}

// NewSession builds a Session from the given options. The returned
// Session has performed no network I/O yet.
func NewSession(opts Options) (*Session, error) {
	if opts.Login == "" || opts.Password == "" || opts.AppID == "" {
		return nil, errors.New("itc: login, password and app id are required")
	}

	client := opts.Client
	if client == nil {
		var err error
		client, err = newHTTPClient(opts.Proxy)
		if err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	authBaseURL := opts.AuthBaseURL
	if authBaseURL == "" {
		authBaseURL = defaultAuthBaseURL
	}

	return &Session{
		login:         opts.Login,
		password:      opts.Password,
		appID:         opts.AppID,
		baseURL:       baseURL,
		authBaseURL:   authBaseURL,
		client:        client,
		log:           log,
		providerID:    opts.ContentProviderID,
		groupID:       opts.GroupID,
		groupResolved: opts.GroupID != "",
	}, nil
}

// ContentProviderID returns the resolved team identifier, or "" before
// login when none was supplied.
func (s *Session) ContentProviderID() string { return s.providerID }

// GroupID returns the resolved tester group identifier, or "" when none
// was supplied or inferred.
func (s *Session) GroupID() string { return s.groupID }

// Authenticated reports whether Login has completed.
func (s *Session) Authenticated() bool { return s.authenticated }

// ServiceKey fetches the login controller script and extracts the widget
// key the sign-in endpoint requires. The key is cached for the Session's
// lifetime after the first success; if the server rotates it the Session
// must be recreated.
func (s *Session) ServiceKey(ctx context.Context) (string, error) {
	if s.serviceKey != "" {
		return s.serviceKey, nil
	}

	status, body, err := s.do(ctx, http.MethodGet, s.baseURL+loginScriptPath, nil, nil)
	if err != nil {
		return "", fmt.Errorf("fetch login controller script: %w", err)
	}
	if !success(status) {
		return "", fmt.Errorf("fetch login controller script: status %d", status)
	}

	m := serviceKeyPattern.FindSubmatch(body)
	if m == nil {
		return "", ErrServiceKeyNotFound
	}
	s.serviceKey = string(m[1])
	return s.serviceKey, nil
}

// Login signs the Session in. It is idempotent: once authenticated it
// returns immediately without network I/O. A failed login leaves the
// Session unauthenticated and may be retried.
//
// After a successful sign-in, any linkage identifier not supplied at
// construction is inferred: the content provider id from the account
// profile, the group id from the app's default external group. Session
// cookies set during the handshake are replayed on every later request.
func (s *Session) Login(ctx context.Context) error {
	if s.authenticated {
		return nil
	}

	key, err := s.ServiceKey(ctx)
	if err != nil {
		return err
	}

	payload := struct {
		AccountName string `json:"accountName"`
		Password    string `json:"password"`
		RememberMe  bool   `json:"rememberMe"`
	}{s.login, s.password, false}

	signinURL := s.authBaseURL + signinPath + "?widgetKey=" + url.QueryEscape(key)
	headers := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/json, text/javascript",
	}
	status, body, err := s.do(ctx, http.MethodPost, signinURL, payload, headers)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	if !success(status) {
		return &AuthenticationError{Status: status, Body: string(body)}
	}

	if s.providerID == "" {
		id, err := s.inferContentProviderID(ctx)
		if err != nil {
			return err
		}
		s.providerID = id
		s.log.Info("inferred content provider id", zap.String("contentProviderId", id))
	}

	if !s.groupResolved {
		id, err := s.inferDefaultGroupID(ctx)
		if err != nil {
			return err
		}
		s.groupID = id
		s.groupResolved = true
		s.log.Info("inferred default group id", zap.String("groupId", id))
	}

	s.authenticated = true
	return nil
}

// Groups lists the tester groups of the app. The Session must be signed
// in; Login does not run implicitly here because group listing is itself
// part of the login sequence.
func (s *Session) Groups(ctx context.Context) ([]models.Group, error) {
	u := fmt.Sprintf("%s/testflight/v2/providers/%s/apps/%s/groups", s.baseURL, s.providerID, s.appID)
	status, body, err := s.do(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if !success(status) {
		return nil, fmt.Errorf("list groups: status %d", status)
	}

	var payload struct {
		Data []models.Group `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return payload.Data, nil
}

// AddTester invites email to the app's beta program and returns the
// backend-assigned tester id. It signs in first if needed, then performs
// two non-transactional calls: create the tester, then assign it to the
// resolved group.
//
// An email that is already a tester yields a *DuplicateTesterError; the
// group assignment is then never attempted.
func (s *Session) AddTester(ctx context.Context, email, firstName, lastName string) (string, error) {
	if err := s.Login(ctx); err != nil {
		return "", err
	}

	createURL := fmt.Sprintf("%s/testflight/v2/providers/%s/apps/%s/testers", s.baseURL, s.providerID, s.appID)
	createPayload := struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}{email, firstName, lastName}

	status, body, err := s.do(ctx, http.MethodPost, createURL, createPayload, nil)
	if err != nil {
		return "", fmt.Errorf("create tester: %w", err)
	}
	if !success(status) {
		if isDuplicate(status, body) {
			return "", &DuplicateTesterError{Email: email}
		}
		return "", &TesterCreationError{Status: status, Body: string(body)}
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("parse create tester response: %w", err)
	}
	testerID := created.Data.ID

	assignURL := fmt.Sprintf("%s/testflight/v2/providers/%s/apps/%s/groups/%s/testers/%s",
		s.baseURL, s.providerID, s.appID, s.groupID, testerID)
	assignPayload := struct {
		GroupID  string `json:"groupId"`
		TesterID string `json:"testerId"`
	}{s.groupID, testerID}

	status, body, err = s.do(ctx, http.MethodPut, assignURL, assignPayload, nil)
	if err != nil {
		return "", fmt.Errorf("assign tester to group: %w", err)
	}
	if !success(status) {
		return "", &GroupAssignmentError{Status: status, Body: string(body)}
	}

	return testerID, nil
}

// NumTesters returns the number of external testers of the app. It signs
// in first if needed and has no other side effects.
func (s *Session) NumTesters(ctx context.Context) (int, error) {
	if err := s.Login(ctx); err != nil {
		return 0, err
	}
	return s.countExternalTesters(ctx)
}

// RemoveTester removes email from the app's external testers through the
// legacy endpoint, which reports neither success nor failure directly:
// the tester count before and after has to be compared to tell whether
// anything was removed.
func (s *Session) RemoveTester(ctx context.Context, email string) error {
	if err := s.Login(ctx); err != nil {
		return err
	}

	before, err := s.countExternalTesters(ctx)
	if err != nil {
		return err
	}

	payload := legacyTesterPayload(email, "", "", false)
	status, body, err := s.do(ctx, http.MethodPost, s.legacyTestersURL(), payload, nil)
	if err != nil {
		return fmt.Errorf("remove tester: %w", err)
	}
	if status == http.StatusInternalServerError {
		return &TesterRemovalError{Reason: "server error"}
	}
	if !success(status) {
		return &TesterRemovalError{Reason: fmt.Sprintf("status %d", status)}
	}

	var result struct {
		Data struct {
			Users []json.RawMessage `json:"users"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return &TesterRemovalError{Reason: fmt.Sprintf("parse response: %v", err)}
	}
	if before-len(result.Data.Users) == 0 {
		return &TesterRemovalError{Reason: fmt.Sprintf("%s was not removed", email)}
	}
	return nil
}

// inferContentProviderID reads the first associated account from the
// user profile. Multi-organization accounts are not disambiguated; the
// first listed wins.
func (s *Session) inferContentProviderID(ctx context.Context) (string, error) {
	status, body, err := s.do(ctx, http.MethodGet, s.baseURL+userDetailPath, nil, nil)
	if err != nil {
		return "", &LinkageInferenceError{Resource: "content provider", Err: err}
	}
	if !success(status) {
		return "", &LinkageInferenceError{Resource: "content provider", Err: fmt.Errorf("status %d", status)}
	}

	var payload struct {
		Data struct {
			AssociatedAccounts []struct {
				ContentProvider struct {
					ContentProviderID json.Number `json:"contentProviderId"`
				} `json:"contentProvider"`
			} `json:"associatedAccounts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &LinkageInferenceError{Resource: "content provider", Err: err}
	}
	if len(payload.Data.AssociatedAccounts) == 0 {
		return "", &LinkageInferenceError{Resource: "content provider", Err: errors.New("no associated accounts")}
	}
	id := payload.Data.AssociatedAccounts[0].ContentProvider.ContentProviderID.String()
	if id == "" {
		return "", &LinkageInferenceError{Resource: "content provider", Err: errors.New("missing contentProviderId")}
	}
	return id, nil
}

// inferDefaultGroupID picks the group flagged as the default external
// group. Returns "" when no group carries the flag; the backend will then
// reject the invite unless the caller supplies a group id.
func (s *Session) inferDefaultGroupID(ctx context.Context) (string, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return "", &LinkageInferenceError{Resource: "group", Err: err}
	}
	id := ""
	for _, g := range groups {
		if g.IsDefaultExternalGroup {
			id = g.ID
		}
	}
	return id, nil
}

func (s *Session) countExternalTesters(ctx context.Context) (int, error) {
	status, body, err := s.do(ctx, http.MethodGet, s.legacyTestersURL(), nil, nil)
	if err != nil {
		return 0, fmt.Errorf("list external testers: %w", err)
	}
	if !success(status) {
		return 0, fmt.Errorf("list external testers: status %d", status)
	}

	var payload struct {
		Data struct {
			Users []json.RawMessage `json:"users"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("list external testers: %w", err)
	}
	return len(payload.Data.Users), nil
}

func (s *Session) legacyTestersURL() string {
	return fmt.Sprintf("%s/WebObjects/iTunesConnect.woa/ra/user/externalTesters/%s/", s.baseURL, s.appID)
}

// do issues one request through the Session's client. JSON payloads are
// marshaled and sent with Content-Type: application/json; extra headers
// come last so they can override defaults. The response body is read in
// full and returned alongside the status code.
func (s *Session) do(ctx context.Context, method, rawURL string, payload any, headers map[string]string) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func success(status int) bool {
	return status >= 200 && status <= 299
}

// isDuplicate classifies a failed tester creation as "email already
// invited". The backend answers 409 for duplicates; older responses bury
// it in the error message instead.
func isDuplicate(status int, body []byte) bool {
	if status == http.StatusConflict {
		return true
	}
	return duplicateMarker.Match(body)
}

// legacyTesterPayload builds the nested users payload the legacy
// externalTesters endpoint expects. testing=false removes the tester.
func legacyTesterPayload(email, firstName, lastName string, testing bool) any {
	type value struct {
		Value any `json:"value"`
	}
	type emailAddress struct {
		ErrorKeys []string `json:"errorKeys"`
		Value     string   `json:"value"`
	}
	type user struct {
		EmailAddress emailAddress `json:"emailAddress"`
		FirstName    value        `json:"firstName"`
		LastName     value        `json:"lastName"`
		Testing      value        `json:"testing"`
	}
	return struct {
		Users []user `json:"users"`
	}{Users: []user{{
		EmailAddress: emailAddress{ErrorKeys: []string{}, Value: email},
		FirstName:    value{Value: firstName},
		LastName:     value{Value: lastName},
		Testing:      value{Value: testing},
	}}}
}
