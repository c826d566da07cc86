package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/core/sessionstore"
)

var (
	// ErrNotOpened is returned when the store is used before Open.
	ErrNotOpened = errors.New("file store not opened")
	// ErrInvalidKey is returned when a session key cannot be used as a file name.
	ErrInvalidKey = errors.New("invalid session key")
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Store keeps one payload file per session key under a namespaced directory.
// It is the cheap local tier: no external service, survives process restarts
// on the same host.
type Store struct {
	dir string
}

// NewStore creates an unopened file store.
func NewStore() *Store { return &Store{} }

// Open creates the payload directory at path/name with owner-only permissions.
func (s *Store) Open(_ context.Context, path, name string) error {
	if path == "" {
		path = os.TempDir()
	}
	dir := filepath.Join(path, name)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	s.dir = dir
	return nil
}

// Close releases the directory handle. Payload files remain on disk.
func (s *Store) Close() error {
	s.dir = ""
	return nil
}

// validKey reports whether id is safe to use as a file name. Session keys are
// issuer-generated hex strings, so anything outside that shape is treated as
// hostile input rather than a storage miss.
func validKey(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func (s *Store) path(id string) (string, error) {
	if s.dir == "" {
		return "", ErrNotOpened
	}
	if !validKey(id) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, "sess_"+id), nil
}

// Read returns the payload for id, or an empty string when no file exists.
func (s *Store) Read(_ context.Context, id string) (string, error) {
	path, err := s.path(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write stores the payload, creating or truncating the file for id.
func (s *Store) Write(_ context.Context, id, data string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(data), filePerm)
}

// Destroy removes the payload file, reporting whether one existed.
func (s *Store) Destroy(_ context.Context, id string) (bool, error) {
	path, err := s.path(id)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GC removes payload files whose modification time predates maxLifetime and
// returns how many were deleted.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) (int64, error) {
	if s.dir == "" {
		return 0, ErrNotOpened
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxLifetime)

	var removed int64
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "sess_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, err
		}
		removed++
	}
	return removed, nil
}

var _ sessionstore.Store = (*Store)(nil)
