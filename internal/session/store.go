// Package session persists the authenticated Sentinel session.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Role is the server-assigned role of the authenticated user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAgent      Role = "agent"
	RoleTechnician Role = "technician"
	RoleRanger     Role = "ranger"
)

// Session is the bearer token plus cached identity. A session is either
// fully present or absent; a partial record on disk loads as absent so a
// damaged file forces re-login instead of half-authenticated requests.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// Complete reports whether all four fields are set.
func (s Session) Complete() bool {
	return s.Token != "" && s.UserID != "" && s.Email != "" && s.Role != ""
}

// Store holds the session in memory and mirrors it to a file under the
// data directory. All methods are safe for concurrent use.
type Store struct {
	path string

	mu  sync.RWMutex
	cur *Session
}

// NewStore creates a store backed by session.json under dir and loads
// any previously persisted session.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	st := &Store{path: filepath.Join(dir, "session.json")}

	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || !sess.Complete() {
		// Corrupt or partial state is treated as logged out.
		return st, nil
	}

	st.cur = &sess
	return st, nil
}

// Save persists the session. Incomplete sessions are rejected so no
// reader ever observes a partially populated session.
func (s *Store) Save(sess Session) error {
	if !sess.Complete() {
		return fmt.Errorf("refusing to save incomplete session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(sess); err != nil {
		return err
	}
	s.cur = &sess
	return nil
}

// writeFile writes via a temp file and rename so a crash mid-write
// leaves either the old session or the new one, never a torn file.
func (s *Store) writeFile(sess Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Load returns the current session, or ok=false when logged out.
func (s *Store) Load() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return Session{}, false
	}
	return *s.cur, true
}

// Token returns the bearer token, or "" when no session is present.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return ""
	}
	return s.cur.Token
}

// Clear removes the session from memory and disk. Safe to call when
// already cleared.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
