package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/conduit-dev/conduit/internal/cli/userconfig"
)

const credentialsFileName = "credentials.json"

// FileStore keeps items in a JSON file readable only by the current user.
// The file maps namespace -> key -> value
type FileStore struct {
	Path      string
	Namespace string

	mu sync.Mutex
}

// NewFileStore returns a store backed by ~/.config/conduit/credentials.json
func NewFileStore(namespace string) (*FileStore, error) {
	dir, err := userconfig.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return &FileStore{
		Path:      filepath.Join(dir, credentialsFileName),
		Namespace: namespace,
	}, nil
}

func (s *FileStore) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}

	items := data[s.Namespace]
	if items == nil {
		items = map[string]string{}
		data[s.Namespace] = items
	}

	if value == "" {
		delete(items, key)
		if len(items) == 0 {
			delete(data, s.Namespace)
		}
	} else {
		items[key] = value
	}

	return s.write(data)
}

func (s *FileStore) GetItem(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return "", err
	}
	return data[s.Namespace][key], nil
}

func (s *FileStore) read() (map[string]map[string]string, error) {
	raw, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	data := map[string]map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return data, nil
}

func (s *FileStore) write(data map[string]map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.Path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}
