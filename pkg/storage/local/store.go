package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store writes uploads to a directory served under a public URL prefix.
// It backs photo uploads in dev when no bucket is configured.
type Store struct {
	dir       string
	urlPrefix string
}

func New(dir, urlPrefix string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return &Store{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Upload copies body into the store and returns its public path.
func (s *Store) Upload(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", errors.New("object name is required")
	}
	full := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return s.urlPrefix + clean, nil
}

// DeleteObject removes a stored file. Missing files are not an error.
func (s *Store) DeleteObject(_ context.Context, object string) error {
	full := filepath.Join(s.dir, filepath.FromSlash(path.Clean("/"+object)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ObjectFromURL maps a public path produced by Upload back to its object name.
func (s *Store) ObjectFromURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, s.urlPrefix+"/") {
		return "", false
	}
	return strings.TrimPrefix(raw, s.urlPrefix+"/"), true
}
