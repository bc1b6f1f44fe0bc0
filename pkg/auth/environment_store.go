package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore on top of WBPRIVACY_COOKIE.
// Read-only: it exists so one-off runs and CI don't need a saved session.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds a session from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	cookie := os.Getenv("WBPRIVACY_COOKIE")
	if cookie == "" {
		return nil, ErrSessionNotFound
	}

	// The environment carries no account name
	if name == "" {
		name = "default"
	}

	return &Account{
		Name:         name,
		Cookie:       cookie,
		UserAgent:    os.Getenv("WBPRIVACY_USER_AGENT"),
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the environment cookie is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment session exists
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("WBPRIVACY_COOKIE") != ""
}
