package session

import (
	"errors"
	"sync"

	"github.com/dgellow/nexusquery/internal/idp"
)

// ErrAlreadyInitialized is returned when Initialize is called twice.
var ErrAlreadyInitialized = errors.New("state already initialized")

// State is the client's application state: the remote configuration, the
// identity provider built from it, and the current session. The UI loop
// writes it; gateway commands read it from their own goroutines.
type State struct {
	mu       sync.RWMutex
	ready    bool
	apiURL   string
	provider idp.Provider
	current  *idp.Session
}

// New returns an uninitialized state.
func New() *State {
	return &State{}
}

// Initialize records the bootstrap result and marks the state ready.
// It succeeds exactly once.
func (s *State) Initialize(apiURL string, provider idp.Provider) error {
	if provider == nil {
		return errors.New("provider is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return ErrAlreadyInitialized
	}
	s.apiURL = apiURL
	s.provider = provider
	s.ready = true
	return nil
}

// Ready reports whether bootstrap has completed.
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// APIURL returns the backend base URL, or "" before initialization.
func (s *State) APIURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiURL
}

// Provider returns the identity provider, or nil before initialization.
func (s *State) Provider() idp.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// Session returns the current session, or nil when signed out.
func (s *State) Session() *idp.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetSession replaces the current session. nil signs out.
func (s *State) SetSession(session *idp.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session
}

// Backend returns what a backend call needs in one consistent read.
func (s *State) Backend() (apiURL string, current *idp.Session, ready bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiURL, s.current, s.ready
}
