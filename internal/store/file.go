package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileStoreName = "store.json"

// ErrCorrupt is returned by FileStore.Get when store.json is not a JSON
// object of strings. The next Set replaces the document.
var ErrCorrupt = errors.New("corrupt store file")

// FileStore keeps every entry in a single indented JSON object on disk.
// Each Set rewrites the whole file.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created on
// the first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, fileStoreName)
}

func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if errors.Is(err, ErrCorrupt) {
		entries = make(map[string]string)
	} else if err != nil {
		return err
	}
	entries[key] = value

	// Marshal with 4-space indent
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	return s.replace(data)
}

// replace writes data to a temp file beside store.json and renames it over
// the old document.
func (s *FileStore) replace(data []byte) error {
	tmp, err := os.CreateTemp(s.dir, fileStoreName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("rename store file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// load reads the backing file. A missing file is an empty store. A document
// that is not an object of strings, including a bare null, is ErrCorrupt.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: unmarshal store: %v", ErrCorrupt, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: unmarshal store: document is not an object", ErrCorrupt)
	}
	return entries, nil
}
