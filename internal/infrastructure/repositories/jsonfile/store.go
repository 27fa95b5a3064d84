package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store owns the three JSON documents (users, videos, channels) and one
// exclusive section per document. Every read-modify-write of a document runs
// under its mutex, which guarantees at most one writer per document and no
// lost updates. There are no cross-document transactions and the rewrite
// itself is not crash-atomic: a crash mid-write can truncate a document.
type Store struct {
	usersPath    string
	videosPath   string
	channelsPath string

	usersMu    sync.Mutex
	videosMu   sync.Mutex
	channelsMu sync.Mutex

	now    func() time.Time
	logger *zap.SugaredLogger
}

func NewStore(usersPath, videosPath, channelsPath string, logger *zap.SugaredLogger) *Store {
	return &Store{
		usersPath:    usersPath,
		videosPath:   videosPath,
		channelsPath: channelsPath,
		now:          time.Now,
		logger:       logger,
	}
}

// Init creates any missing documents with their empty default shape so that
// the files exist from first start, matching the historical layout.
func (s *Store) Init() error {
	if _, err := os.Stat(s.usersPath); os.IsNotExist(err) {
		if err := s.writeDocument(s.usersPath, usersDocument{Users: []*userRecord{}}); err != nil {
			return fmt.Errorf("init users document: %w", err)
		}
	}
	if _, err := os.Stat(s.videosPath); os.IsNotExist(err) {
		if err := s.writeDocument(s.videosPath, videosDocument{Videos: []*videoRecord{}, NextID: 1}); err != nil {
			return fmt.Errorf("init videos document: %w", err)
		}
	}
	if _, err := os.Stat(s.channelsPath); os.IsNotExist(err) {
		if err := s.writeDocument(s.channelsPath, channelsDocument{Channels: []*channelRecord{}}); err != nil {
			return fmt.Errorf("init channels document: %w", err)
		}
	}
	return nil
}

// readDocument loads a document into v, reporting whether the parse
// succeeded. Missing and corrupt files both come back false, and callers
// fall back to the default document shape: by contract "no records" and
// "damaged document" are indistinguishable.
func (s *Store) readDocument(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		if s.logger != nil {
			s.logger.Warnw("document failed to parse, treating as empty",
				"path", path,
				"error", err,
			)
		}
		return false
	}
	return true
}

// writeDocument replaces the document contents entirely.
func (s *Store) writeDocument(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}
