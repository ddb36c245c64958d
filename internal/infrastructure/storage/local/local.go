package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"devhub/internal/domain/picture"
)

// PublicPath is the URL prefix the HTTP layer serves Dir under.
const PublicPath = "/uploads/profiles"

type Storage struct {
	dir     string
	baseURL string
}

func New(dir, publicBaseURL string) (*Storage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("empty upload dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

var _ picture.Storage = (*Storage)(nil)

func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) Save(_ context.Context, name, _ string, r io.Reader, size int64) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write picture: %w", err)
	}
	if size > 0 && n != size {
		return fmt.Errorf("write picture: wrote %d of %d bytes", n, size)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod picture: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store picture: %w", err)
	}
	return nil
}

func (s *Storage) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete picture: %w", err)
	}
	return nil
}

func (s *Storage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + PublicPath + "/" + name
}

func (s *Storage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", picture.ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}
