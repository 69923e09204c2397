package store

import "sync"

type memoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV returns a process-local KV. Used in tests and as the fallback
// when no durable path is configured; state does not survive restarts.
func NewMemoryKV() KV {
	return &memoryKV{values: make(map[string]string)}
}

func (s *memoryKV) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *memoryKV) Close() error {
	return nil
}
