package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/salesdesk/salesdesk/engine/crm"
	"gopkg.in/yaml.v3"
)

// ErrNoSession is returned when nobody is logged in.
var ErrNoSession = errors.New("no active session; run `salesdesk login`")

// Session identifies the dashboard user. It is passed explicitly to every page.
type Session struct {
	UserID    string     `yaml:"user_id"    json:"userID"`
	RoleID    crm.RoleID `yaml:"role_id"    json:"roleID"`
	CreatedAt time.Time  `yaml:"created_at" json:"createdAt"`
}

func (s Session) Validate() error {
	if s.UserID == "" {
		return crm.NewValidationError("user_id", "is required")
	}
	if !s.RoleID.Valid() {
		return crm.NewValidationError("role_id", "must be 1 (admin), 2 (staff) or 3 (customer)")
	}
	return nil
}

// FileStore persists the session as YAML.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("failed to parse session file %s: %w", f.Path, err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, fmt.Errorf("invalid session file %s: %w", f.Path, err)
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
