package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Snapshot is one backup of the persistent documents. Documents maps the
// document file name to its raw content, taken verbatim from disk.
type Snapshot struct {
	Version   string                     `json:"version"`
	Timestamp time.Time                  `json:"timestamp"`
	Documents map[string]json.RawMessage `json:"documents"`
}

// Storage defines interface for backup storage
type Storage interface {
	Save(ctx context.Context, name string, data io.Reader) error
	Load(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Service snapshots a fixed set of JSON document files.
type Service struct {
	storage Storage
	paths   []string
	version string
}

// NewService creates a backup service over the given document files.
func NewService(storage Storage, paths []string, version string) *Service {
	return &Service{
		storage: storage,
		paths:   paths,
		version: version,
	}
}

// CreateBackup snapshots the current documents. Missing or unreadable
// files are skipped; the snapshot records what was actually on disk.
func (s *Service) CreateBackup(ctx context.Context) (string, error) {
	snapshot := Snapshot{
		Version:   s.version,
		Timestamp: time.Now(),
		Documents: make(map[string]json.RawMessage, len(s.paths)),
	}

	for _, path := range s.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !json.Valid(data) {
			continue
		}
		snapshot.Documents[filepath.Base(path)] = json.RawMessage(data)
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("backup-%s.json", snapshot.Timestamp.Format("20060102-150405"))
	if err := s.storage.Save(ctx, name, bytes.NewReader(jsonData)); err != nil {
		return "", fmt.Errorf("failed to save backup: %w", err)
	}
	return name, nil
}

// RestoreBackup loads a snapshot by name.
func (s *Service) RestoreBackup(ctx context.Context, name string) (*Snapshot, error) {
	reader, err := s.storage.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup data: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup data: %w", err)
	}
	return &snapshot, nil
}

// ListBackups lists all available backups, oldest first.
func (s *Service) ListBackups(ctx context.Context) ([]string, error) {
	names, err := s.storage.List(ctx, "backup-")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Prune deletes the oldest backups until at most keep remain.
func (s *Service) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		return nil
	}
	names, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}
	for len(names) > keep {
		if err := s.storage.Delete(ctx, names[0]); err != nil {
			return err
		}
		names = names[1:]
	}
	return nil
}
