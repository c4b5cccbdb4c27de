// Package credentials provides secure storage for the speech/analysis API
// key. The key lives in the system keyring:
//   - macOS: Keychain
//   - Windows: Credential Manager
//   - Linux: Secret Service (libsecret)
//
// The GROQ_API_KEY environment variable takes precedence over the keyring,
// which keeps CI and server deployments configuration-only.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the system keyring.
	keyringService = "meetsum"
	// keyringUser is the user/account name used in the system keyring.
	keyringUser = "groq-api-key"

	// EnvAPIKey is the environment variable that overrides the keyring.
	EnvAPIKey = "GROQ_API_KEY"
)

// Common errors.
var (
	// ErrNoAPIKey is returned when no API key is stored.
	ErrNoAPIKey = errors.New("no API key stored")
	// ErrKeyringUnavailable indicates the system keyring is not available.
	ErrKeyringUnavailable = errors.New("system keyring unavailable")
)

// Key sources reported by Source.
const (
	SourceEnvironment = "environment"
	SourceKeyring     = "keyring"
)

// Store manages API key storage operations.
type Store struct{}

// NewStore creates a credential store.
func NewStore() *Store {
	return &Store{}
}

// SetAPIKey stores the API key in the system keyring.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// APIKey returns the stored API key, preferring the environment override.
func (s *Store) APIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}
	key, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoAPIKey
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

// Source reports where the API key would be read from.
func (s *Store) Source() (string, error) {
	if strings.TrimSpace(os.Getenv(EnvAPIKey)) != "" {
		return SourceEnvironment, nil
	}
	if _, err := s.APIKey(); err != nil {
		return "", err
	}
	return SourceKeyring, nil
}

// ClearAPIKey removes the API key from the system keyring.
func (s *Store) ClearAPIKey() error {
	err := keyring.Delete(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNoAPIKey
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// Masked renders an API key safe for display, keeping only the first and
// last four characters.
func Masked(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
