package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// LocalStore writes files to a directory served under a public path
// (the default deployment: uploads on local disk behind /uploads).
type LocalStore struct {
	dir        string
	publicPath string
}

func NewLocalStore(dir string, publicPath string) (*LocalStore, error) {
	if dir == "" || dir == "/" || dir == "." {
		return nil, fmt.Errorf("unsafe upload directory %q", dir)
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat upload dir %s: %w", dir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("upload path %s is not a directory", dir)
	}

	return &LocalStore{dir: dir, publicPath: publicPath}, nil
}

func (s *LocalStore) Save(_ context.Context, filename string, data []byte, _ string) error {
	target := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func (s *LocalStore) Remove(_ context.Context, filename string) error {
	target := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", target, err)
	}
	return nil
}

func (s *LocalStore) URL(filename string) string {
	return path.Join(s.publicPath, filename)
}

// Dir exposes the backing directory for static serving and the janitor sweep.
func (s *LocalStore) Dir() string {
	return s.dir
}
