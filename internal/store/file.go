package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
)

// FileStore persists keys as a single JSON document on disk. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// truncated state file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a FileStore at path, creating parent directories as
// needed.
func NewFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "file: mkdir %s", filepath.Dir(path))
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	b, ok := doc[key]
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (s *FileStore) Set(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(data)

	out, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "file: marshal")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return eris.Wrapf(err, "file: write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return eris.Wrapf(err, "file: rename %s", s.path)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "file: read %s", s.path)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "file: parse %s", s.path)
	}
	return doc, nil
}
