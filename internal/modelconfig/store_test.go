package modelconfig

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// memBackend is an in-memory Backend for store tests.
type memBackend struct {
	mu    sync.Mutex
	data  []byte
	saves int

	saveErr error
}

func (m *memBackend) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, os.ErrNotExist
	}

	return m.data, nil
}

func (m *memBackend) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.data = append([]byte(nil), data...)
	m.saves++

	return nil
}

func (m *memBackend) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil

	return nil
}

func TestStore_SetActivatesAndPersists(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)

	if _, ok := store.Active(); ok {
		t.Fatal("fresh store should have no active config")
	}

	err := store.Set(Config{Provider: ProviderOllama, Model: "llama3:8b"})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cfg, ok := store.Active()
	if !ok {
		t.Fatal("config should be active after Set")
	}

	if cfg.Endpoint != DefaultOllamaEndpoint {
		t.Errorf("endpoint = %q, want normalized default", cfg.Endpoint)
	}

	if backend.saves != 1 {
		t.Errorf("saves = %d, want 1", backend.saves)
	}

	// A fresh store over the same backend sees the persisted config.
	reloaded := NewStore(backend, nil)

	got, ok := reloaded.Active()
	if !ok || got.Model != "llama3:8b" {
		t.Errorf("reloaded config = %+v, %v", got, ok)
	}
}

func TestStore_RejectedSetLeavesEverythingUntouched(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)

	if err := store.Set(Config{Provider: ProviderGemini, Model: "gemini-1.5-pro", APIKey: "AIzaSy-x"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	err := store.Set(Config{Provider: ProviderGemini, Model: "gemini-1.5-pro"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Set() error = %v, want *ValidationError", err)
	}

	cfg, ok := store.Active()
	if !ok || cfg.APIKey != "AIzaSy-x" {
		t.Errorf("active config changed after rejected Set: %+v, %v", cfg, ok)
	}

	if backend.saves != 1 {
		t.Errorf("saves = %d, want 1 (rejected Set must not persist)", backend.saves)
	}
}

func TestStore_SetReplacesWholesale(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)

	if err := store.Set(Config{Provider: ProviderOllama, Model: "llama3:8b"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := store.Set(Config{Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-x"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cfg, _ := store.Active()

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %q, want openai", cfg.Provider)
	}

	if cfg.Endpoint != "" {
		t.Errorf("endpoint = %q, stale ollama field survived the replacement", cfg.Endpoint)
	}
}

func TestStore_PersistFailureKeepsPriorConfig(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)

	if err := store.Set(Config{Provider: ProviderOllama, Model: "llama3:8b"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	backend.saveErr = errors.New("disk full")

	err := store.Set(Config{Provider: ProviderOllama, Model: "mistral:7b"})
	if err == nil {
		t.Fatal("Set() should surface the persistence failure")
	}

	cfg, _ := store.Active()
	if cfg.Model != "llama3:8b" {
		t.Errorf("active model = %q, want prior config retained", cfg.Model)
	}
}

func TestStore_Remove(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend, nil)

	if err := store.Set(Config{Provider: ProviderOllama, Model: "llama3:8b"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if _, ok := store.Active(); ok {
		t.Error("config still active after Remove")
	}

	if _, err := backend.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Error("durable copy survived Remove")
	}
}

func TestStore_CorruptDurableCopyTreatedAsAbsent(t *testing.T) {
	backend := &memBackend{data: []byte("{not json")}

	store := NewStore(backend, nil)

	if _, ok := store.Active(); ok {
		t.Error("corrupt durable copy should degrade to no configuration")
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "model.json")
	backend := &fileBackend{path: path}

	if _, err := backend.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() on missing file error = %v, want ErrNotExist", err)
	}

	if err := backend.Save([]byte(`{"provider":"ollama"}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got := info.Mode().Perm(); got != 0o600 {
		t.Errorf("file mode = %o, want 600", got)
	}

	data, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if string(data) != `{"provider":"ollama"}` {
		t.Errorf("Load() = %q", data)
	}

	if err := backend.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	// Clearing twice is fine.
	if err := backend.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
