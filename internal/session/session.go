package session

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoSession is returned when no credentials are stored.
	ErrNoSession = errors.New("no active session, run login first")
	// ErrHalfPair is returned when only one of the two tokens is supplied.
	ErrHalfPair = errors.New("access and refresh tokens must be set together")
)

// Credentials is the token pair issued by the login endpoint.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether both tokens are present.
func (c Credentials) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Store persists credentials for one profile.
type Store interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Delete() error
}

// Holder is the process-wide credential holder handed to the HTTP client.
// Readers get the token at call time so a new login takes effect on the next call.
type Holder interface {
	Get() (Credentials, error)
	Set(Credentials) error
	Clear() error
}

// StoreHolder is a Holder backed by a Store.
type StoreHolder struct {
	mu    sync.RWMutex
	store Store
}

// NewHolder creates a holder over the given store
func NewHolder(store Store) *StoreHolder {
	return &StoreHolder{store: store}
}

// Get returns the stored credentials or ErrNoSession.
func (h *StoreHolder) Get() (Credentials, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	creds, err := h.store.Load()
	if err != nil {
		return Credentials{}, err
	}
	if !creds.Valid() {
		return Credentials{}, ErrNoSession
	}
	return creds, nil
}

// Set replaces the stored credentials. Both tokens are required.
func (h *StoreHolder) Set(creds Credentials) error {
	if !creds.Valid() {
		return ErrHalfPair
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Save(creds); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes any stored credentials. Clearing an empty session is not an error.
func (h *StoreHolder) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Delete(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// AccessToken returns the current access token, or "" when logged out.
func AccessToken(h Holder) string {
	if h == nil {
		return ""
	}
	creds, err := h.Get()
	if err != nil {
		return ""
	}
	return creds.AccessToken
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *MemoryStore) Save(creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
