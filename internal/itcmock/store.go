// Package itcmock is an in-process fake of the iTunes Connect and idmsa
// backends, close enough for exercising the session protocol in tests and
// for local development against cmd/itcmockd.
package itcmock

import (
	"sync"

	"github.com/google/uuid"

	"github.com/itckit/tfinvite/internal/models"
)

// Config seeds a Store with one account and one app.
type Config struct {
	// Login and Password are the only accepted credentials.
	Login    string
	Password string
	// ServiceKey is embedded in the login controller script and required
	// as the widgetKey sign-in parameter.
	ServiceKey string
	// ProviderID is the content provider id of the account's single
	// associated organization. Digits only; it is served as a JSON number.
	ProviderID string
	// AppID is the application whose beta program the store manages.
	AppID string
}

// Store holds the mutable backend state behind the mock handlers. Safe
// for concurrent use.
type Store struct {
	cfg Config

	mu       sync.Mutex
	groups   []models.Group
	testers  map[string]*models.Tester // keyed by email
	members  map[string]map[string]bool
	requests []string
}

// NewStore creates a Store for the given config with no groups or
// testers.
func NewStore(cfg Config) *Store {
	return &Store{
		cfg:     cfg,
		testers: make(map[string]*models.Tester),
		members: make(map[string]map[string]bool),
	}
}

// AddGroup registers a tester group.
func (s *Store) AddGroup(g models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, g)
}

// Groups returns the registered groups.
func (s *Store) Groups() []models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Group(nil), s.groups...)
}

// AddTester creates a tester with a fresh id. Reports false if the email
// already exists.
func (s *Store) AddTester(email, firstName, lastName string) (*models.Tester, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testers[email]; ok {
		return nil, false
	}
	t := &models.Tester{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}
	s.testers[email] = t
	return t, true
}

// RemoveTester deletes the tester with the given email. Reports whether
// anything was removed.
func (s *Store) RemoveTester(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.testers[email]
	if !ok {
		return false
	}
	delete(s.testers, email)
	for _, group := range s.members {
		delete(group, t.ID)
	}
	return true
}

// Testers returns all testers.
func (s *Store) Testers() []*models.Tester {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Tester, 0, len(s.testers))
	for _, t := range s.testers {
		out = append(out, t)
	}
	return out
}

// hasTesterID reports whether any tester carries the given id.
func (s *Store) hasTesterID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.testers {
		if t.ID == id {
			return true
		}
	}
	return false
}

// hasGroup reports whether a group with the given id exists.
func (s *Store) hasGroup(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Assign records group membership.
func (s *Store) Assign(groupID, testerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[groupID] == nil {
		s.members[groupID] = make(map[string]bool)
	}
	s.members[groupID][testerID] = true
}

// Assigned reports whether testerID is a member of groupID.
func (s *Store) Assigned(groupID, testerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[groupID][testerID]
}

// record appends one request to the request log.
func (s *Store) record(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, entry)
}

// Requests returns the "METHOD /path" log of everything the mock served,
// in order.
func (s *Store) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests returns how many logged requests match the given
// "METHOD /path" entry exactly.
func (s *Store) CountRequests(entry string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r == entry {
			n++
		}
	}
	return n
}
