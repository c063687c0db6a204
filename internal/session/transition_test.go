package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	user := &User{Email: "jake@jake.jake", Username: "jake", Token: "t"}
	other := &User{Email: "ann@example.com", Username: "ann", Token: "u"}
	errs := ValidationErrors{"email": {"is invalid"}}

	loggedIn := State{CurrentUser: user, Login: LoggedIn}

	tests := []struct {
		name  string
		start State
		tr    Transition
		want  State
	}{
		{
			name:  "register start sets submitting and clears errors",
			start: State{ValidationErrors: errs},
			tr:    Transition{Kind: RegisterStart},
			want:  State{IsSubmitting: true},
		},
		{
			name:  "register success logs in",
			start: State{IsSubmitting: true},
			tr:    Transition{Kind: RegisterSuccess, User: user},
			want:  State{CurrentUser: user, Login: LoggedIn},
		},
		{
			name:  "register failure records errors and keeps user",
			start: State{IsSubmitting: true, CurrentUser: user, Login: LoggedIn},
			tr:    Transition{Kind: RegisterFailure, Errors: errs},
			want:  State{CurrentUser: user, Login: LoggedIn, ValidationErrors: errs},
		},
		{
			name:  "login start",
			start: State{ValidationErrors: errs},
			tr:    Transition{Kind: LoginStart},
			want:  State{IsSubmitting: true},
		},
		{
			name:  "login success replaces user",
			start: State{IsSubmitting: true, CurrentUser: other, Login: LoggedIn},
			tr:    Transition{Kind: LoginSuccess, User: user},
			want:  loggedIn,
		},
		{
			name:  "login failure",
			start: State{IsSubmitting: true},
			tr:    Transition{Kind: LoginFailure, Errors: errs},
			want:  State{ValidationErrors: errs},
		},
		{
			name:  "get current user start only sets loading",
			start: State{ValidationErrors: errs},
			tr:    Transition{Kind: GetCurrentUserStart},
			want:  State{IsLoading: true, ValidationErrors: errs},
		},
		{
			name:  "get current user success",
			start: State{IsLoading: true},
			tr:    Transition{Kind: GetCurrentUserSuccess, User: user},
			want:  loggedIn,
		},
		{
			name:  "get current user failure logs out",
			start: State{IsLoading: true, CurrentUser: user, Login: LoggedIn},
			tr:    Transition{Kind: GetCurrentUserFailure},
			want:  State{Login: LoggedOut},
		},
		{
			name:  "update start is a no-op",
			start: loggedIn,
			tr:    Transition{Kind: UpdateCurrentUserStart},
			want:  loggedIn,
		},
		{
			name:  "update success replaces user only",
			start: loggedIn,
			tr:    Transition{Kind: UpdateCurrentUserSuccess, User: other},
			want:  State{CurrentUser: other, Login: LoggedIn},
		},
		{
			name:  "update failure records errors",
			start: loggedIn,
			tr:    Transition{Kind: UpdateCurrentUserFailure, Errors: errs},
			want:  State{CurrentUser: user, Login: LoggedIn, ValidationErrors: errs},
		},
		{
			name:  "logout",
			start: loggedIn,
			tr:    Transition{Kind: Logout},
			want:  State{Login: LoggedOut},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.start, tt.tr)
			assert.True(t, tt.want.Equal(got), "got %+v, want %+v", got, tt.want)
		})
	}
}

func TestReduce_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		Reduce(State{}, Transition{Kind: TransitionKind(99)})
	})
}

func TestTransitionKind_String(t *testing.T) {
	assert.Equal(t, "registerStart", RegisterStart.String())
	assert.Equal(t, "getCurrentUserFailure", GetCurrentUserFailure.String())
	assert.Equal(t, "logout", Logout.String())
	assert.Equal(t, "TransitionKind(42)", TransitionKind(42).String())
}

func TestState_Views(t *testing.T) {
	assert.False(t, State{}.IsLoggedIn())
	assert.False(t, State{}.IsAnonymous())
	assert.True(t, State{Login: LoggedIn}.IsLoggedIn())
	assert.False(t, State{Login: LoggedOut}.IsLoggedIn())
	assert.True(t, State{Login: LoggedOut}.IsAnonymous())
}
