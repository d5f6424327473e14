package cache

import (
	"context"
	"sync"
)

// MemorySlugCache is an in-process SlugCache without expiry.
type MemorySlugCache struct {
	mu      sync.RWMutex
	entries map[string]int64
}

func NewMemorySlugCache() *MemorySlugCache {
	return &MemorySlugCache{entries: make(map[string]int64)}
}

func (m *MemorySlugCache) Get(_ context.Context, slug string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[slug]
	if !ok {
		return 0, ErrMiss
	}
	return v, nil
}

func (m *MemorySlugCache) Set(_ context.Context, slug string, serial int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[slug] = serial
	return nil
}
