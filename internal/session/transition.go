package session

import "fmt"

// TransitionKind enumerates every state change the session can undergo
type TransitionKind int

const (
	RegisterStart TransitionKind = iota
	RegisterSuccess
	RegisterFailure

	LoginStart
	LoginSuccess
	LoginFailure

	GetCurrentUserStart
	GetCurrentUserSuccess
	GetCurrentUserFailure

	UpdateCurrentUserStart
	UpdateCurrentUserSuccess
	UpdateCurrentUserFailure

	Logout
)

var transitionLabels = [...]string{
	RegisterStart:            "registerStart",
	RegisterSuccess:          "registerSuccess",
	RegisterFailure:          "registerFailure",
	LoginStart:               "loginStart",
	LoginSuccess:             "loginSuccess",
	LoginFailure:             "loginFailure",
	GetCurrentUserStart:      "getCurrentUserStart",
	GetCurrentUserSuccess:    "getCurrentUserSuccess",
	GetCurrentUserFailure:    "getCurrentUserFailure",
	UpdateCurrentUserStart:   "updateCurrentUserStart",
	UpdateCurrentUserSuccess: "updateCurrentUserSuccess",
	UpdateCurrentUserFailure: "updateCurrentUserFailure",
	Logout:                   "logout",
}

func (k TransitionKind) String() string {
	if k < 0 || int(k) >= len(transitionLabels) {
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
	return transitionLabels[k]
}

// Transition is a state change plus its payload. User is set for the Success
// kinds; Errors is set for the Failure kinds that carry validation detail.
type Transition struct {
	Kind   TransitionKind
	User   *User
	Errors ValidationErrors
}

// Reduce applies t to s and returns the new state. It is pure: s is not modified.
func Reduce(s State, t Transition) State {
	switch t.Kind {
	case RegisterStart, LoginStart:
		s.IsSubmitting = true
		s.ValidationErrors = nil
	case RegisterSuccess, LoginSuccess:
		s.IsSubmitting = false
		s.CurrentUser = t.User
		s.Login = LoggedIn
	case RegisterFailure, LoginFailure:
		s.IsSubmitting = false
		s.ValidationErrors = t.Errors

	case GetCurrentUserStart:
		s.IsLoading = true
	case GetCurrentUserSuccess:
		s.IsLoading = false
		s.CurrentUser = t.User
		s.Login = LoggedIn
	case GetCurrentUserFailure:
		s.IsLoading = false
		s.Login = LoggedOut
		s.CurrentUser = nil

	case UpdateCurrentUserStart:
		// nothing observable changes
	case UpdateCurrentUserSuccess:
		s.CurrentUser = t.User
	case UpdateCurrentUserFailure:
		s.ValidationErrors = t.Errors

	case Logout:
		s.CurrentUser = nil
		s.Login = LoggedOut

	default:
		panic(fmt.Sprintf("session: unhandled transition %v", t.Kind))
	}
	return s
}
