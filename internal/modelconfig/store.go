package modelconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/datagenesis-ai/dgctl/internal/paths"
)

// Backend abstracts the durable copy of the configuration so tests can
// substitute an in-memory implementation.
type Backend interface {
	// Load returns the serialized configuration, or os.ErrNotExist when no
	// configuration has been stored.
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// Store is the single source of truth for the active provider configuration.
//
// The in-memory value is loaded once at construction and only changes through
// Set and Remove; there is no background sync with the durable copy.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu     sync.RWMutex
	active *Config
}

// NewStore creates a store backed by the given Backend and loads any existing
// configuration. A corrupt durable copy is logged and treated as absent.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{backend: backend, logger: logger}
	s.load()

	return s
}

// NewFileStore creates a store persisting to the default model config file
// under the dgctl config directory.
func NewFileStore(logger *slog.Logger) (*Store, error) {
	path, err := paths.ModelConfigFile()
	if err != nil {
		return nil, fmt.Errorf("resolve model config path: %w", err)
	}

	return NewStore(&fileBackend{path: path}, logger), nil
}

func (s *Store) load() {
	data, err := s.backend.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read stored model configuration", slog.String("error", err.Error()))
		}

		return
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("stored model configuration is corrupt, ignoring", slog.String("error", err.Error()))
		return
	}

	s.active = &cfg
}

// Set validates and activates a configuration, fully replacing any prior one.
// On validation failure neither memory nor durable storage is touched.
func (s *Store) Set(cfg Config) error {
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialize model configuration: %w", err)
	}

	if err := s.backend.Save(data); err != nil {
		return fmt.Errorf("persist model configuration: %w", err)
	}

	s.mu.Lock()
	s.active = &cfg
	s.mu.Unlock()

	return nil
}

// Remove clears the active configuration from memory and durable storage.
func (s *Store) Remove() error {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	if err := s.backend.Clear(); err != nil {
		return fmt.Errorf("clear model configuration: %w", err)
	}

	return nil
}

// Active returns the current configuration, if any.
func (s *Store) Active() (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return Config{}, false
	}

	return *s.active, true
}

// fileBackend persists the configuration as a single JSON file.
type fileBackend struct {
	path string
}

func (f *fileBackend) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f *fileBackend) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(f.path, data, 0o600)
}

func (f *fileBackend) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}
