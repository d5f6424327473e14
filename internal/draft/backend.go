package draft

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend keeps one JSON document per slug in a directory.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("draft dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(slug string) string {
	return filepath.Join(b.dir, url.PathEscape(slug)+".json")
}

func (b *FileBackend) Read(slug string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return os.ReadFile(b.path(slug))
}

// Write replaces the document through a temp file so a crash never leaves half a draft.
func (b *FileBackend) Write(slug string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(b.dir, ".draft-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path(slug))
}

func (b *FileBackend) Remove(slug string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return os.Remove(b.path(slug))
}

// MemoryBackend keeps drafts in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (m *MemoryBackend) Read(slug string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[slug]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), doc...), nil
}

func (m *MemoryBackend) Write(slug string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[slug] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Remove(slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, slug)
	return nil
}
