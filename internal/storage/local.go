package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps uploads on local disk under a root directory, one
// subdirectory per area.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Save(ctx context.Context, area, name, contentType string, data []byte) (Stored, error) {
	dir := filepath.Join(s.root, area)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Stored{}, err
	}
	fname := uuid.NewString() + "_" + sanitizeName(name)
	if err := os.WriteFile(filepath.Join(dir, fname), data, 0o644); err != nil {
		return Stored{}, err
	}
	return Stored{Path: area + "/" + fname}, nil
}

func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	p, err := s.abs(path)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	p, err := s.abs(path)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStore) abs(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("storage: invalid path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
