// Package progress persists the single UserProgress record.
// The store never fails loudly: reads fall back to the default record and
// writes report success as a boolean.
package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ikigai-wellness/ikigai/internal/domain"
	"github.com/ikigai-wellness/ikigai/internal/infra/metrics"
)

// Key is the fixed storage key of the progress record.
const Key = "ikigai_progress"

// Store loads, saves and resets the progress record on a KV backend.
type Store struct {
	kv  domain.KVStore
	log *slog.Logger
}

// NewStore creates a store over kv. A nil logger uses slog.Default().
func NewStore(kv domain.KVStore, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{kv: kv, log: log.With("component", "progress")}
}

// Load returns the persisted record, or a fresh default when nothing is
// stored or the stored bytes cannot be read. The default is not persisted.
func (s *Store) Load() domain.UserProgress {
	p, err := s.load()
	if err != nil {
		metrics.StorageFailures.WithLabelValues("load").Inc()
		s.log.Warn("load progress failed, using defaults", "error", err)
		return domain.DefaultProgress()
	}
	return p
}

func (s *Store) load() (domain.UserProgress, error) {
	data, ok, err := s.kv.Get(Key)
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if !ok {
		return domain.DefaultProgress(), nil
	}
	var p domain.UserProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.UserProgress{}, fmt.Errorf("%w: %v", domain.ErrCorruptRecord, err)
	}
	p.Normalize()
	return p, nil
}

// Save overwrites the stored record. Returns false on any failure.
func (s *Store) Save(p domain.UserProgress) bool {
	data, err := json.Marshal(p)
	if err == nil {
		err = s.kv.Put(Key, data)
	}
	if err != nil {
		metrics.StorageFailures.WithLabelValues("save").Inc()
		s.log.Warn("save progress failed", "error", err)
		return false
	}
	return true
}

// Reset deletes the stored record. Returns false on failure.
func (s *Store) Reset() bool {
	if err := s.kv.Delete(Key); err != nil {
		metrics.StorageFailures.WithLabelValues("reset").Inc()
		s.log.Warn("reset progress failed", "error", err)
		return false
	}
	return true
}

// ─── In-Memory Backend ──────────────────────────────────────────────────────

// MemoryBackend is a process-local KVStore, used for ephemeral runs and tests.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Get implements domain.KVStore.
func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put implements domain.KVStore.
func (m *MemoryBackend) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements domain.KVStore.
func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
