// Package session manages the persisted bearer token for the remote API.
//
// The token is the one piece of shared mutable auth state in the program:
// every outbound API call reads it, and any call that observes an
// unauthorized response clears it. It is persisted under the tgreview home
// directory so non-interactive commands share the dashboard's session.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds the bearer token in memory and mirrors it to disk.
type Store struct {
	mu    sync.Mutex
	path  string
	token string
}

// Open creates a store backed by the given token file. A missing or
// unreadable file simply yields an unauthenticated session.
func Open(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	}
	return s
}

// Token returns the current bearer token, or "" when no session exists.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a session token is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Save stores the token in memory and persists it with owner-only permissions.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return fmt.Errorf("refusing to save empty token")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	s.token = token
	return nil
}

// Clear invalidates the session, removing both the in-memory token and the
// token file. Clearing an already-empty session is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
