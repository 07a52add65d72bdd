package itc

import (
	"errors"
	"fmt"
)

// ErrServiceKeyNotFound is returned when the login controller script no
// longer contains the itcServiceKey assignment, which means the upstream
// page structure changed.
var ErrServiceKeyNotFound = errors.New("itc: service key not found in login controller script")

// AuthenticationError reports a sign-in request rejected by the identity
// provider.
type AuthenticationError struct {
	// Status is the HTTP status code of the sign-in response.
	Status int
	// Body is the raw response body, kept for diagnosis.
	Body string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("itc: sign-in failed with status %d", e.Status)
}

// LinkageInferenceError reports that the profile or groups resource could
// not be parsed into the expected shape during account-linkage inference.
type LinkageInferenceError struct {
	// Resource names what was being inferred ("content provider" or "group").
	Resource string
	// Err is the underlying cause.
	Err error
}

func (e *LinkageInferenceError) Error() string {
	return fmt.Sprintf("itc: cannot infer %s: %v", e.Resource, e.Err)
}

func (e *LinkageInferenceError) Unwrap() error { return e.Err }

// TesterCreationError reports a rejected tester-creation request.
type TesterCreationError struct {
	// Status is the HTTP status code of the create response.
	Status int
	// Body is the raw response body, kept for diagnosis.
	Body string
}

func (e *TesterCreationError) Error() string {
	return fmt.Sprintf("itc: tester creation failed with status %d: %s", e.Status, e.Body)
}

// GroupAssignmentError reports a rejected group-membership request.
type GroupAssignmentError struct {
	// Status is the HTTP status code of the assign response.
	Status int
	// Body is the raw response body, kept for diagnosis.
	Body string
}

func (e *GroupAssignmentError) Error() string {
	return fmt.Sprintf("itc: group assignment failed with status %d: %s", e.Status, e.Body)
}

// DuplicateTesterError reports that the invitee is already a tester for
// the app. Callers may treat it as a benign no-op.
type DuplicateTesterError struct {
	// Email is the already-invited address.
	Email string
}

func (e *DuplicateTesterError) Error() string {
	return fmt.Sprintf("itc: %s is already a tester", e.Email)
}

// TesterRemovalError reports a failed tester removal.
type TesterRemovalError struct {
	// Reason describes what went wrong.
	Reason string
}

func (e *TesterRemovalError) Error() string {
	return "itc: remove tester: " + e.Reason
}
