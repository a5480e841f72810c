// Package credentials keeps the encoded Basic auth credential between runs
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// StorageKey names the stored credential
const StorageKey = "recipegen.basic_auth"

// FileName is the credential file inside the config directory
const FileName = "credentials.yaml"

// Store persists the encoded credential, base64(":"+password)
type Store interface {
	// Load returns the stored value and whether one exists
	Load() (string, bool, error)
	Save(encoded string) error
	Clear() error
}

// ErrCorrupt is returned by Load when the credential file cannot be parsed.
// Save and Clear replace such a file.
var ErrCorrupt = errors.New("credentials file is corrupt")

// FileStore keeps credentials in a YAML map so other keys in the file survive
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

var _ Store = (*FileStore)(nil)

// Option configures a FileStore
type Option func(*FileStore)

// WithLogger sets the logger used to report a replaced corrupt file
func WithLogger(log *zap.Logger) Option {
	return func(s *FileStore) {
		if log != nil {
			s.log = log
		}
	}
}

// NewFileStore stores credentials under dir, or under the user config
// directory when dir is empty
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "recipegen")
	}
	s := &FileStore{path: filepath.Join(dir, FileName), log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the file backing the store
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[StorageKey]
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *FileStore) Save(encoded string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _, err := s.readForWrite()
	if err != nil {
		return err
	}
	entries[StorageKey] = encoded
	return s.write(entries)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, replaced, err := s.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := entries[StorageKey]; !ok && !replaced {
		return nil
	}
	delete(entries, StorageKey)
	return s.write(entries)
}

func (s *FileStore) read() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return entries, nil
}

// readForWrite is read, except that an unparseable file counts as empty
// and is reported as replaced so the caller rewrites it
func (s *FileStore) readForWrite() (map[string]string, bool, error) {
	entries, err := s.read()
	if errors.Is(err, ErrCorrupt) {
		s.log.Warn("replacing unreadable credentials file", zap.String("path", s.path), zap.Error(err))
		return make(map[string]string), true, nil
	}
	return entries, false, err
}

// write replaces the file atomically with owner-only permissions
func (s *FileStore) write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// MemoryStore is a Store that lives only as long as the process
type MemoryStore struct {
	mu    sync.Mutex
	value string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with encoded, which may be empty
func NewMemoryStore(encoded string) *MemoryStore {
	return &MemoryStore{value: encoded}
}

func (m *MemoryStore) Load() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.value != "", nil
}

func (m *MemoryStore) Save(encoded string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = encoded
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	return nil
}
