package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTokenNotFound is returned by [TokenStore.Get] when no credential has been persisted.
var ErrTokenNotFound = fmt.Errorf("token not found")

// TokenStore is the opaque secure key/value capability the session persists
// its credential through. Implementations hold exactly one token.
type TokenStore interface {
	Put(token string) error
	Get() (string, error)
	Delete() error
}

// FileTokenStore persists the token as a single file with owner-only permissions.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Put writes the token, creating parent directories as needed.
func (s *FileTokenStore) Put(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Get returns the persisted token, or [ErrTokenNotFound] when absent.
func (s *FileTokenStore) Get() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Delete removes the persisted token. Deleting an absent token is not an error.
func (s *FileTokenStore) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
