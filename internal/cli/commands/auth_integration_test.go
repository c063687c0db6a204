package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/conduit-dev/conduit/internal/cli/auth"
	"github.com/conduit-dev/conduit/internal/cli/client"
	"github.com/conduit-dev/conduit/internal/conduit"
	"github.com/conduit-dev/conduit/internal/cli/config"
	appconfig "github.com/conduit-dev/conduit/internal/config"
	"github.com/conduit-dev/conduit/internal/server"
)

// testEnv is a dev API server plus the CLI dependencies pointing at it
type testEnv struct {
	server *config.Server
	store  *auth.MemoryStore
	out    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv(emailEnv, "")
	t.Setenv(passwordEnv, "")

	srv, err := server.New(&appconfig.Config{
		Database: appconfig.DatabaseConfig{URL: ":memory:"},
		Auth:     appconfig.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create dev server: %v", err)
	}
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		httpServer.Close()
		srv.Close()
	})

	return &testEnv{
		server: &config.Server{URL: httpServer.URL, Alias: "local"},
		store:  auth.NewMemoryStore(),
		out:    &bytes.Buffer{},
	}
}

func (e *testEnv) opts() []Option {
	api := client.New(e.server.URL, client.WithTokenSource(auth.TokenSource(e.store)))
	return []Option{
		WithServer(e.server),
		WithTokenStore(e.store),
		WithAPIClient(api),
		WithOutput(e.out),
	}
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, err := e.store.GetItem(conduit.AccessTokenKey)
	if err != nil {
		t.Fatalf("failed to read token: %v", err)
	}
	return token
}

func (e *testEnv) register(t *testing.T) {
	t.Helper()
	err := runRegister(context.Background(), nil, "jake", "jake@jake.jake", "jakejake", e.opts()...)
	if err != nil {
		t.Fatalf("register failed: %v\n%s", err, e.out.String())
	}
}

// TestAuthFlow runs register, whoami, logout and login against the dev server
func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t)
	if env.token(t) == "" {
		t.Fatal("expected token to be saved after register")
	}

	env.out.Reset()
	if err := runWhoami(ctx, nil, outputText, env.opts()...); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(env.out.String(), "jake@jake.jake") {
		t.Errorf("expected whoami output to contain email, got:\n%s", env.out.String())
	}

	if err := runLogout(nil, env.opts()...); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if token := env.token(t); token != "" {
		t.Errorf("expected token to be cleared, got '%s'", token)
	}

	if err := runWhoami(ctx, nil, outputText, env.opts()...); err == nil {
		t.Fatal("expected whoami to fail after logout")
	}

	env.out.Reset()
	if err := runLogin(ctx, nil, "jake@jake.jake", "jakejake", env.opts()...); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if env.token(t) == "" {
		t.Fatal("expected token to be saved after login")
	}
	if !strings.Contains(env.out.String(), "Login successful") {
		t.Errorf("unexpected login output:\n%s", env.out.String())
	}
}

// TestLogin_WrongPassword prints the server's validation errors and stores nothing
func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	if err := env.store.SetItem(conduit.AccessTokenKey, ""); err != nil {
		t.Fatal(err)
	}

	env.out.Reset()
	err := runLogin(context.Background(), nil, "jake@jake.jake", "wrong-password", env.opts()...)
	if err == nil {
		t.Fatal("expected login to fail")
	}

	if _, ok := conduit.ValidationErrors(err); !ok {
		t.Errorf("expected a validation error, got %v", err)
	}
	if err.Error() != "login failed" {
		t.Errorf("expected a short error, got %q", err.Error())
	}
	if n := strings.Count(env.out.String(), "email or password is invalid"); n != 1 {
		t.Errorf("expected validation message printed once, got %d times:\n%s", n, env.out.String())
	}
	if token := env.token(t); token != "" {
		t.Errorf("expected no token to be saved, got '%s'", token)
	}
}

func TestLogin_EmailFromEnv(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	t.Setenv(emailEnv, "jake@jake.jake")
	t.Setenv(passwordEnv, "jakejake")

	if err := runLogin(context.Background(), nil, "", "", env.opts()...); err != nil {
		t.Fatalf("login with env credentials failed: %v", err)
	}
}

func TestLogin_MissingEmail(t *testing.T) {
	env := newTestEnv(t)

	err := runLogin(context.Background(), nil, "", "secret", env.opts()...)
	if err == nil || !strings.Contains(err.Error(), "email is required") {
		t.Fatalf("expected missing email error, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	env.out.Reset()
	err := runRegister(context.Background(), nil, "jake", "jake@jake.jake", "jakejake", env.opts()...)
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	if err.Error() != "registration failed" {
		t.Errorf("expected a short error, got %q", err.Error())
	}

	out := env.out.String()
	for _, want := range []string{"email has already been taken", "username has already been taken"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWhoami_Formats(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	ctx := context.Background()

	env.out.Reset()
	if err := runWhoami(ctx, nil, outputJSON, env.opts()...); err != nil {
		t.Fatalf("whoami json failed: %v", err)
	}
	var fromJSON profileView
	if err := json.Unmarshal(env.out.Bytes(), &fromJSON); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, env.out.String())
	}
	if fromJSON.Username != "jake" || fromJSON.Server != env.server.URL {
		t.Errorf("unexpected json profile: %+v", fromJSON)
	}
	if strings.Contains(env.out.String(), env.token(t)) {
		t.Error("json output must not contain the token")
	}

	env.out.Reset()
	if err := runWhoami(ctx, nil, outputYAML, env.opts()...); err != nil {
		t.Fatalf("whoami yaml failed: %v", err)
	}
	var fromYAML profileView
	if err := yaml.Unmarshal(env.out.Bytes(), &fromYAML); err != nil {
		t.Fatalf("invalid yaml output: %v\n%s", err, env.out.String())
	}
	if fromYAML.Email != "jake@jake.jake" {
		t.Errorf("unexpected yaml profile: %+v", fromYAML)
	}

	if err := runWhoami(ctx, nil, "xml", env.opts()...); err == nil {
		t.Error("expected unknown output format to fail")
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	ctx := context.Background()

	bio := "I like to skateboard"
	env.out.Reset()
	if err := runUpdateProfile(ctx, nil, conduit.UpdateUserInput{Bio: &bio}, env.opts()...); err != nil {
		t.Fatalf("update-profile failed: %v", err)
	}
	if !strings.Contains(env.out.String(), bio) {
		t.Errorf("expected updated bio in output, got:\n%s", env.out.String())
	}

	badEmail := "not-an-email"
	env.out.Reset()
	err := runUpdateProfile(ctx, nil, conduit.UpdateUserInput{Email: &badEmail}, env.opts()...)
	if err == nil {
		t.Fatal("expected invalid email to be rejected")
	}
	if !strings.Contains(env.out.String(), "email is invalid") {
		t.Errorf("expected validation message in output, got:\n%s", env.out.String())
	}
}

func TestUpdateProfile_NothingToUpdate(t *testing.T) {
	err := runUpdateProfile(context.Background(), nil, conduit.UpdateUserInput{})
	if err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Fatalf("expected nothing to update error, got %v", err)
	}
}
