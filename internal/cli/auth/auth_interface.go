package auth

import (
	"fmt"

	"github.com/conduit-dev/conduit/internal/cli/client"
	"github.com/conduit-dev/conduit/internal/conduit"
)

// Store defines the persistent key-value storage used for credentials.
// This allows us to swap the keyring for a file or memory in tests
type Store interface {
	SetItem(key, value string) error
	GetItem(key string) (string, error)
}

// Backend names accepted by Open
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// Open returns the store for backend, namespaced to the given API server
func Open(backend, namespace string) (Store, error) {
	switch backend {
	case "", BackendKeyring:
		return NewKeyringStore(namespace), nil
	case BackendFile:
		return NewFileStore(namespace)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown token store %q (expected %s, %s or %s)", backend, BackendKeyring, BackendFile, BackendMemory)
	}
}

// TokenSource reads the access token from store on every call
func TokenSource(store Store) client.TokenSource {
	return client.TokenFunc(func() (string, error) {
		return store.GetItem(conduit.AccessTokenKey)
	})
}
