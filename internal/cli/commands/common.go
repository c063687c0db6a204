package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/conduit-dev/conduit/internal/cli/auth"
	"github.com/conduit-dev/conduit/internal/cli/client"
	"github.com/conduit-dev/conduit/internal/conduit"
	"github.com/conduit-dev/conduit/internal/cli/config"
	"github.com/conduit-dev/conduit/internal/cli/serverselect"
	"github.com/conduit-dev/conduit/internal/cli/userconfig"
	"github.com/conduit-dev/conduit/internal/session"
)

// GlobalOptions holds the persistent flags shared by every command
type GlobalOptions struct {
	Server     string
	TokenStore string
	LogLevel   string

	// Logger is set by the root command before any subcommand runs
	Logger zerolog.Logger
}

// commandDeps bundles what an auth command needs. Tests inject fakes through Options.
type commandDeps struct {
	server *config.Server
	api    session.API
	store  auth.Store
	out    io.Writer
	logger zerolog.Logger
}

// Option overrides a dependency of a command
type Option func(*commandDeps)

// WithAPIClient replaces the HTTP client with api
func WithAPIClient(api session.API) Option {
	return func(d *commandDeps) {
		d.api = api
	}
}

// WithTokenStore replaces the configured token store
func WithTokenStore(store auth.Store) Option {
	return func(d *commandDeps) {
		d.store = store
	}
}

// WithServer skips server resolution and uses server
func WithServer(server *config.Server) Option {
	return func(d *commandDeps) {
		d.server = server
	}
}

// WithOutput redirects command output, stdout by default
func WithOutput(w io.Writer) Option {
	return func(d *commandDeps) {
		d.out = w
	}
}

// resolveDeps fills in every dependency not provided by opts from the project
// config, the user config and the global flags.
func resolveDeps(g *GlobalOptions, opts ...Option) (*commandDeps, error) {
	deps := &commandDeps{
		out:    os.Stdout,
		logger: zerolog.Nop(),
	}
	if g != nil {
		deps.logger = g.Logger
	}
	for _, opt := range opts {
		opt(deps)
	}

	if deps.server == nil {
		var urlOrAlias string
		if g != nil {
			urlOrAlias = g.Server
		}
		server, err := getSelectedServer(urlOrAlias)
		if err != nil {
			return nil, err
		}
		deps.server = server
	}

	if deps.store == nil {
		var backend string
		if g != nil {
			backend = g.TokenStore
		}
		if backend == "" {
			configured, err := userconfig.GetTokenStore()
			if err != nil {
				return nil, fmt.Errorf("failed to load user config: %w", err)
			}
			backend = configured
		}

		store, err := auth.Open(backend, deps.server.URL)
		if err != nil {
			return nil, err
		}
		deps.store = store
	}

	if deps.api == nil {
		deps.api = client.New(deps.server.URL, client.WithTokenSource(auth.TokenSource(deps.store)))
	}

	return deps, nil
}

// newSession builds the session the command operates on. Failed submissions
// print the field errors the API returned, like a form would show them.
func (d *commandDeps) newSession() *session.Service {
	sess := session.New(d.api, d.store, d.logger)
	sess.Subscribe(func(t session.Transition, s session.State) {
		switch t.Kind {
		case session.RegisterFailure, session.LoginFailure, session.UpdateCurrentUserFailure:
			printValidationErrors(d.out, s.ValidationErrors)
		}
	})
	return sess
}

// getSelectedServer loads the config and returns the selected server.
// This is common logic used by most commands.
func getSelectedServer(urlOrAlias string) (*config.Server, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'conduit init <api-url>' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, urlOrAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit conduit.json and add a valid API URL")
	}

	return server, nil
}

// printValidationErrors writes one "field message" line per error, sorted by field
func printValidationErrors(w io.Writer, errs session.ValidationErrors) {
	verr := &conduit.ValidationError{Errors: errs}
	for _, line := range verr.Messages() {
		fmt.Fprintf(w, "  ✗ %s\n", line)
	}
}

// fieldErrorsReported stands in for a validation error whose fields the session
// listener already printed, so the command error stays a one-liner
type fieldErrorsReported struct {
	action string
	err    error
}

func (e *fieldErrorsReported) Error() string { return e.action + " failed" }

func (e *fieldErrorsReported) Unwrap() error { return e.err }

// submitError wraps a failed register, login or profile update for the user
func submitError(action string, err error) error {
	if _, ok := conduit.ValidationErrors(err); ok {
		return &fieldErrorsReported{action: action, err: err}
	}
	// the session already prefixes its operation name
	if cause := errors.Unwrap(err); cause != nil {
		err = cause
	}
	return fmt.Errorf("%s failed: %w", action, err)
}

// readPassword prompts on the terminal, or fails when stdin is piped
func readPassword(envVar string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or %s env var)", envVar)
	}

	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
