package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// Store persists the session across process restarts. The file replaces
// the browser's local storage keys (token, userRole, id).
type Store interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// FileStore keeps the session as a JSON file with owner-only permissions.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns ErrNoSession when no session has been saved yet.
func (f *FileStore) Load() (*Session, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding session file: %w", err)
	}
	if s.TokenValue == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Save is called on login.
func (f *FileStore) Save(s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Clear is called on logout; a missing file is already cleared.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore holds the session in memory only; tests use it so they never
// touch shared storage.
type MemoryStore struct {
	s *Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (*Session, error) {
	if m.s == nil || m.s.TokenValue == "" {
		return nil, ErrNoSession
	}
	return m.s, nil
}

func (m *MemoryStore) Save(s *Session) error { m.s = s; return nil }
func (m *MemoryStore) Clear() error          { m.s = nil; return nil }

// FromAuth builds the session persisted after a successful login.
func FromAuth(token, role, userID string) *Session {
	return &Session{
		TokenValue: token,
		Role:       domain.Role(role),
		UserID:     userID,
	}
}
