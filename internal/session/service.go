package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/conduit-dev/conduit/internal/conduit"
)

// API is the remote auth API the session delegates to
type API interface {
	Register(ctx context.Context, input conduit.RegisterInput) (*User, error)
	Login(ctx context.Context, input conduit.LoginInput) (*User, error)
	GetCurrentUser(ctx context.Context) (*User, error)
	UpdateCurrentUser(ctx context.Context, input conduit.UpdateUserInput) (*User, error)
}

// ItemStore persists the bearer token between runs
type ItemStore interface {
	SetItem(key, value string) error
}

// Listener is called after every applied transition with the resulting state.
// Listeners run one transition at a time, in the order transitions were reduced.
// They may read the session but must not start an operation synchronously.
type Listener func(t Transition, s State)

// Service owns one session's state and runs the auth operations against it.
//
// Operations are not de-duplicated: concurrent calls each apply their own
// transitions, and whichever settles last wins. The mutex only makes each
// transition atomic.
type Service struct {
	api    API
	store  ItemStore
	logger zerolog.Logger

	// dispatchMu is held from reduce through notification so listeners observe
	// transitions in reduce order
	dispatchMu sync.Mutex

	mu    sync.Mutex
	state State

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New creates a session with all flags cleared and login state unknown
func New(api API, store ItemStore, logger zerolog.Logger) *Service {
	return &Service{
		api:       api,
		store:     store,
		logger:    logger.With().Str("component", "session").Logger(),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for every future transition and returns a func that removes it
func (s *Service) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// apply runs Reduce under the state lock, then notifies listeners before the
// next transition can be reduced
func (s *Service) apply(t Transition) {
	if t.User != nil {
		u := *t.User
		t.User = &u
	}
	t.Errors = t.Errors.Clone()

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, t)
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.logger.Debug().
		Str("transition", t.Kind.String()).
		Str("login", snapshot.Login.String()).
		Bool("submitting", snapshot.IsSubmitting).
		Bool("loading", snapshot.IsLoading).
		Msg("Session transition")

	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(t, snapshot.clone())
	}
}

// Snapshot returns a copy of the current state
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// CurrentUser returns the authenticated user, or nil
func (s *Service) CurrentUser() *User {
	return s.Snapshot().CurrentUser
}

// IsLoggedIn is false both before the login state is known and after logout
func (s *Service) IsLoggedIn() bool {
	return s.Snapshot().IsLoggedIn()
}

// IsAnonymous is true only once the session is known to be logged out
func (s *Service) IsAnonymous() bool {
	return s.Snapshot().IsAnonymous()
}

// Register creates an account, logs the session in and persists the token
func (s *Service) Register(ctx context.Context, input conduit.RegisterInput) (*User, error) {
	s.apply(Transition{Kind: RegisterStart})

	user, err := s.api.Register(ctx, input)
	if err != nil {
		s.fail(RegisterFailure, err)
		return nil, fmt.Errorf("register: %w", err)
	}

	s.apply(Transition{Kind: RegisterSuccess, User: user})
	if err := s.persistToken(user.Token); err != nil {
		return user, err
	}
	return user, nil
}

// Login authenticates, logs the session in and persists the token
func (s *Service) Login(ctx context.Context, input conduit.LoginInput) (*User, error) {
	s.apply(Transition{Kind: LoginStart})

	user, err := s.api.Login(ctx, input)
	if err != nil {
		s.fail(LoginFailure, err)
		return nil, fmt.Errorf("login: %w", err)
	}

	s.apply(Transition{Kind: LoginSuccess, User: user})
	if err := s.persistToken(user.Token); err != nil {
		return user, err
	}
	return user, nil
}

// GetCurrentUser resolves the stored token to a user. Any failure, whether the
// token is rejected or the server is unreachable, marks the session logged out.
func (s *Service) GetCurrentUser(ctx context.Context) (*User, error) {
	s.apply(Transition{Kind: GetCurrentUserStart})

	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Current user unavailable")
		s.apply(Transition{Kind: GetCurrentUserFailure})
		return nil, fmt.Errorf("get current user: %w", err)
	}

	s.apply(Transition{Kind: GetCurrentUserSuccess, User: user})
	return user, nil
}

// UpdateCurrentUser saves profile changes and replaces the current user
func (s *Service) UpdateCurrentUser(ctx context.Context, input conduit.UpdateUserInput) (*User, error) {
	s.apply(Transition{Kind: UpdateCurrentUserStart})

	user, err := s.api.UpdateCurrentUser(ctx, input)
	if err != nil {
		s.fail(UpdateCurrentUserFailure, err)
		return nil, fmt.Errorf("update current user: %w", err)
	}

	s.apply(Transition{Kind: UpdateCurrentUserSuccess, User: user})
	return user, nil
}

// Logout clears the persisted token and the current user. The session is
// logged out even if clearing the token fails; that error is still returned.
func (s *Service) Logout() error {
	err := s.persistToken("")
	s.apply(Transition{Kind: Logout})
	return err
}

// fail applies a Failure transition carrying the validation errors in err, if any.
// Errors without field detail still clear the busy flag and leave ValidationErrors nil.
func (s *Service) fail(kind TransitionKind, err error) {
	fields, ok := conduit.ValidationErrors(err)
	if !ok {
		s.logger.Warn().Err(err).Str("transition", kind.String()).Msg("Auth request failed")
	}
	s.apply(Transition{Kind: kind, Errors: fields})
}

func (s *Service) persistToken(token string) error {
	if err := s.store.SetItem(conduit.AccessTokenKey, token); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist access token")
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	return nil
}
