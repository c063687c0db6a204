// Package session holds the client-side authentication state for a Conduit
// front-end: the current user, busy flags for in-flight requests, and the last
// validation errors returned by the API.
//
// State only changes through Reduce, driven by a Service whose operations call
// the remote API and apply a Start transition before the call and a Success or
// Failure transition once it settles.
package session

import (
	"maps"
	"slices"

	"github.com/conduit-dev/conduit/internal/conduit"
)

// User is the authenticated user's profile
type User = conduit.User

// ValidationErrors maps a field name to the messages the API returned for it
type ValidationErrors map[string][]string

// Clone returns a deep copy, or nil for a nil map
func (v ValidationErrors) Clone() ValidationErrors {
	if v == nil {
		return nil
	}
	out := make(ValidationErrors, len(v))
	for field, msgs := range v {
		out[field] = slices.Clone(msgs)
	}
	return out
}

// LoginState is the tri-state login flag: not yet determined, logged in, logged out
type LoginState int

const (
	LoginUnknown LoginState = iota
	LoggedIn
	LoggedOut
)

func (s LoginState) String() string {
	switch s {
	case LoggedIn:
		return "logged_in"
	case LoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session.
//
// LoggedIn implies CurrentUser != nil and LoggedOut implies CurrentUser == nil.
type State struct {
	IsSubmitting     bool
	IsLoading        bool
	CurrentUser      *User
	ValidationErrors ValidationErrors
	Login            LoginState
}

// IsLoggedIn reports true only when the session is known to be authenticated
func (s State) IsLoggedIn() bool {
	return s.Login == LoggedIn
}

// IsAnonymous reports true only when the session is known to be unauthenticated,
// which is distinct from not having checked yet
func (s State) IsAnonymous() bool {
	return s.Login == LoggedOut
}

// clone copies the pointer and map fields so the snapshot can't alias live state
func (s State) clone() State {
	out := s
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	out.ValidationErrors = s.ValidationErrors.Clone()
	return out
}

// Equal compares two snapshots field by field
func (s State) Equal(o State) bool {
	if s.IsSubmitting != o.IsSubmitting || s.IsLoading != o.IsLoading || s.Login != o.Login {
		return false
	}
	if (s.CurrentUser == nil) != (o.CurrentUser == nil) {
		return false
	}
	if s.CurrentUser != nil && *s.CurrentUser != *o.CurrentUser {
		return false
	}
	return maps.EqualFunc(s.ValidationErrors, o.ValidationErrors, slices.Equal[[]string])
}
