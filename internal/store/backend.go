package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Backend is a durable key/value area holding named fragments.
// A Put replaces the whole value.
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Put(ctx context.Context, name string, data []byte) error
	Close() error
}

// FileBackend stores each fragment as <dir>/<name>.json.
// Writes go through a temp file and rename so readers never see a torn
// document.
type FileBackend struct {
	dir string
}

var _ Backend = (*FileBackend)(nil)

// OpenDir returns a FileBackend rooted at dir, creating it if needed.
func OpenDir(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create fragment directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileBackend) Get(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get fragment %q: %w", name, err)
	}
	return data, true, nil
}

func (f *FileBackend) Put(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("put fragment %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("put fragment %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("put fragment %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), f.path(name)); err != nil {
		return fmt.Errorf("put fragment %q: %w", name, err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

// Memory is a process-local Backend, used by tests and the memory driver.
type Memory struct {
	mu        sync.Mutex
	fragments map[string][]byte
}

var _ Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{fragments: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.fragments[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *Memory) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fragments[name] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Close() error { return nil }
