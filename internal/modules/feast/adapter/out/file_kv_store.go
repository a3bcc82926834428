package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	feastout "feastly/internal/modules/feast/port/out"
	apperrors "feastly/internal/platform/errors"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileKeyValueStore keeps one JSON file per key.
type FileKeyValueStore struct {
	dir string
}

func NewFileKeyValueStore(dir string) feastout.KeyValueStore {
	return &FileKeyValueStore{dir: dir}
}

func (s *FileKeyValueStore) path(key string) string {
	return filepath.Join(s.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (s *FileKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("read key %s: %w", key, err)
	}
	return payload, nil
}

// Set writes through a temp file and rename so a crash never leaves a
// truncated value behind.
func (s *FileKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create kv dir: %w", err)
	}
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("commit key %s: %w", key, err)
	}
	return nil
}

func (s *FileKeyValueStore) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove key %s: %w", key, err)
	}
	return nil
}
