package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore writes into the upload directory served under /uploads.
type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir, prefix: "/uploads/"}
}

func (s *LocalStore) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	// Ensure upload directory exists.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := filepath.Base(name)
	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return s.prefix + filename, nil
}
