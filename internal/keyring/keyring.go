package keyring

import (
	"errors"
	"fmt"
	"sync"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	// ServiceName is the keyring service name for storing secrets.
	// Uses reverse domain notation for proper namespacing.
	ServiceName = "com.tdameritrade.tdam"

	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyAppID        = "app_id"
)

// ErrNotFound is returned when a secret is not found in the keyring.
var ErrNotFound = errors.New("secret not found")

// Store provides an interface for secure secret storage.
type Store interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SystemStore implements Store using the system keyring.
type SystemStore struct{}

// NewSystemStore creates a new system keyring store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// Get retrieves a secret from the system keyring.
func (s *SystemStore) Get(service, key string) (string, error) {
	secret, err := gokeyring.Get(service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return secret, nil
}

// Set stores a secret in the system keyring.
func (s *SystemStore) Set(service, key, value string) error {
	return gokeyring.Set(service, key, value)
}

// Delete removes a secret from the system keyring.
func (s *SystemStore) Delete(service, key string) error {
	err := gokeyring.Delete(service, key)
	if err != nil && errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}
	return err
}

// MemoryStore is an in-process Store, used by tests and when no system
// keyring is available.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(service, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[service+":"+key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(service, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[service+":"+key] = value
	return nil
}

func (m *MemoryStore) Delete(service, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, service+":"+key)
	return nil
}

// Credentials are the secrets kept under ServiceName. Empty fields were not
// found in the store.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	AppID        string
}

// LoadCredentials reads every credential from store. Missing keys are left
// empty; any other store failure is returned.
func LoadCredentials(store Store) (Credentials, error) {
	var c Credentials
	for key, dst := range map[string]*string{
		KeyAccessToken:  &c.AccessToken,
		KeyRefreshToken: &c.RefreshToken,
		KeyAppID:        &c.AppID,
	} {
		v, err := store.Get(ServiceName, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to read %s from keyring: %w", key, err)
		}
		*dst = v
	}
	return c, nil
}

// SaveCredentials writes the non-empty fields of c to store.
func SaveCredentials(store Store, c Credentials) error {
	for _, kv := range [][2]string{
		{KeyAccessToken, c.AccessToken},
		{KeyRefreshToken, c.RefreshToken},
		{KeyAppID, c.AppID},
	} {
		if kv[1] == "" {
			continue
		}
		if err := store.Set(ServiceName, kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to store %s in keyring: %w", kv[0], err)
		}
	}
	return nil
}

// ClearCredentials removes every credential from store.
func ClearCredentials(store Store) error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyAppID} {
		if err := store.Delete(ServiceName, key); err != nil {
			return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
		}
	}
	return nil
}
