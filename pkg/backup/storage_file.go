package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage implements Storage on a local directory
type FileStorage struct {
	dir string
}

// NewFileStorage creates a file storage rooted at dir, creating it if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (fs *FileStorage) Save(ctx context.Context, name string, data io.Reader) error {
	f, err := os.Create(filepath.Join(fs.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

func (fs *FileStorage) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(fs.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	return f, nil
}

func (fs *FileStorage) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (fs *FileStorage) Delete(ctx context.Context, name string) error {
	if err := os.Remove(filepath.Join(fs.dir, name)); err != nil {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}
	return nil
}
