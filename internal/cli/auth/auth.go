package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const service = "conduit-cli"

// KeyringStore persists items in the OS keychain/credential manager,
// namespaced per API server so tokens for different servers don't collide
type KeyringStore struct {
	Namespace string
}

// NewKeyringStore returns a keyring-backed store for the given server
func NewKeyringStore(namespace string) *KeyringStore {
	return &KeyringStore{Namespace: namespace}
}

// getKeyringKey returns a unique key for an item on this store's server
func (s *KeyringStore) getKeyringKey(key string) string {
	return fmt.Sprintf("%s-%s", key, s.Namespace)
}

// SetItem saves value under key; an empty value removes the item
func (s *KeyringStore) SetItem(key, value string) error {
	k := s.getKeyringKey(key)
	if value == "" {
		if err := keyring.Delete(service, k); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
		return nil
	}
	if err := keyring.Set(service, k, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// GetItem returns the stored value, or an empty string if nothing is stored
func (s *KeyringStore) GetItem(key string) (string, error) {
	value, err := keyring.Get(service, s.getKeyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}
