package store

import (
	"fmt"
	"strings"

	"photos/internal/models"

	"go.uber.org/zap"
)

// Store persists one blob per user, addressable by username. The blob
// carries the user's complete object graph.
type Store struct {
	backend Backend
	log     *zap.Logger
}

// New creates a Store from a Config.
// Use ConfigFromEnv() to create config from environment variables.
func New(cfg Config, log *zap.Logger) (*Store, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("store ready", zap.String("backend", backend.Description()))
	return &Store{backend: backend, log: log}, nil
}

// Backend returns the blob backend.
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Key maps a username to its blob key. Usernames compare
// case-insensitively, so keys are lowercased.
func Key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Save writes the user's object graph as a whole-blob replacement.
func (s *Store) Save(u *models.User) error {
	blob, err := encodeUser(u)
	if err != nil {
		return &Error{Op: "save", Key: Key(u.Username), Err: err}
	}
	if err := s.backend.Put(Key(u.Username), blob); err != nil {
		return &Error{Op: "save", Key: Key(u.Username), Err: err}
	}
	return nil
}

// Load reads the user stored under the given username. A missing key
// yields (nil, nil); a corrupted or version-mismatched blob is logged
// and also yields (nil, nil). Only backend read failures return an error.
func (s *Store) Load(username string) (*models.User, error) {
	key := Key(username)
	blob, found, err := s.backend.Get(key)
	if err != nil {
		return nil, &Error{Op: "load", Key: key, Err: err}
	}
	if !found {
		return nil, nil
	}
	u, err := decodeUser(blob)
	if err != nil {
		s.log.Warn("discarding unreadable user blob",
			zap.String("key", key),
			zap.Error(err))
		return nil, nil
	}
	return u, nil
}

// Exists reports whether a blob is stored under the given username.
func (s *Store) Exists(username string) (bool, error) {
	_, found, err := s.backend.Get(Key(username))
	if err != nil {
		return false, &Error{Op: "exists", Key: Key(username), Err: err}
	}
	return found, nil
}

// Delete removes the stored blob for the given username, if any.
func (s *Store) Delete(username string) error {
	if err := s.backend.Delete(Key(username)); err != nil {
		return &Error{Op: "delete", Key: Key(username), Err: err}
	}
	return nil
}

// List enumerates the usernames with a stored blob.
func (s *Store) List() ([]string, error) {
	keys, err := s.backend.List()
	if err != nil {
		return nil, &Error{Op: "list", Err: err}
	}
	return keys, nil
}

// Error wraps a persistence failure with its operation and key.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
