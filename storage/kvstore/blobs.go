package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Blobs stores opaque values under string keys.
type Blobs interface {
	// Get returns false when key was never written.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Blobs = (*MemoryBlobs)(nil)
	_ Blobs = (*FileBlobs)(nil)
)

// MemoryBlobs keeps the values in process memory.
type MemoryBlobs struct {
	mutex sync.RWMutex
	table map[string][]byte
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{table: make(map[string][]byte)}
}

func (b *MemoryBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	data, ok := b.table[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (b *MemoryBlobs) Set(_ context.Context, key string, data []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.table[key] = append([]byte(nil), data...)
	return nil
}

func (b *MemoryBlobs) Delete(_ context.Context, key string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.table, key)
	return nil
}

// FileBlobs keeps one <key>.json file per key in a directory.
type FileBlobs struct {
	dir string
}

func NewFileBlobs(dir string) (*FileBlobs, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating store directory")
	}
	return &FileBlobs{dir: dir}, nil
}

func (b *FileBlobs) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set replaces the file through a rename so readers never see a half written value.
func (b *FileBlobs) Set(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path(key))
}

func (b *FileBlobs) Delete(_ context.Context, key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
