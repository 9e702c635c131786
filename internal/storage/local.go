package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes attachments to a directory on disk. The server mounts
// the directory under publicBase so the returned URLs resolve.
type LocalStore struct {
	root       string
	publicBase string
}

func NewLocalStore(root, publicBase string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local media root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &LocalStore{
		root:       root,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write media file: %w", err)
	}

	return s.publicBase + "/" + key, nil
}
