// Package models defines the data structures exchanged with the
// TestFlight web backend and recorded in the invite journal.
package models

import "time"

// Tester represents an invited beta tester. The backend assigns ID on
// creation; Email is the unique key within a beta program.
type Tester struct {
	// ID is the backend-assigned tester identifier.
	ID string `json:"id"`
	// Email is the invitee's email address.
	Email string `json:"email"`
	// FirstName is the invitee's first name, may be empty.
	FirstName string `json:"firstName"`
	// LastName is the invitee's last name, may be empty.
	LastName string `json:"lastName"`
}

// Group is a named cohort of beta testers. Groups are read-only from the
// client's perspective; at most one is flagged as the default destination
// for new external invitees.
type Group struct {
	// ID is the backend group identifier.
	ID string `json:"id"`
	// Name is the display name of the group.
	Name string `json:"name"`
	// IsDefaultExternalGroup marks the default external tester group.
	IsDefaultExternalGroup bool `json:"isDefaultExternalGroup"`
}

// InviteRecord is one journal row describing the outcome of an invite
// attempt.
type InviteRecord struct {
	// ID is a locally generated unique identifier for the record.
	ID string
	// AppID is the application the tester was invited to.
	AppID string
	// Email is the invitee's email address.
	Email string
	// Outcome is one of the Outcome* constants.
	Outcome string
	// CreatedAt is when the attempt finished.
	CreatedAt time.Time
}

// Invite outcomes stored in the journal.
const (
	// OutcomeInvited means the tester was created and assigned to a group.
	OutcomeInvited = "invited"
	// OutcomeDuplicate means the email was already a tester for the app.
	OutcomeDuplicate = "duplicate"
	// OutcomeFailed means the backend rejected the invite.
	OutcomeFailed = "failed"
)
