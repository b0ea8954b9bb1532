package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"listo/models"
)

// Session is the locally cached login state.
type Session struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// SessionStore persists a Session between runs. Load returns (nil, nil)
// when nothing is cached.
type SessionStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// FileStore keeps the session as JSON in a single user-readable file.
type FileStore struct {
	Path string
}

// DefaultSessionPath is the session file under the user's config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "listo", "session.json"), nil
}

func (s FileStore) Load() (*Session, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

func (s FileStore) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.Path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore holds the session for the life of the process only.
type MemoryStore struct {
	session *Session
}

func (m *MemoryStore) Load() (*Session, error) { return m.session, nil }

func (m *MemoryStore) Save(session *Session) error {
	m.session = session
	return nil
}

func (m *MemoryStore) Clear() error {
	m.session = nil
	return nil
}
