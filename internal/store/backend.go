// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"os"
	"sync"

	"recipechat/internal/util"
)

// =============================================================================
// STORAGE PORT
// =============================================================================

// Backend is the storage transport behind the conversation store. Keeping it
// this small isolates the eviction/quota logic from where bytes actually
// live.
type Backend interface {
	// Get returns the stored entry. ok is false when the key is absent.
	Get(key string) (data []byte, ok bool, err error)

	// Set stores the entry, replacing any previous value.
	Set(key string, data []byte) error

	// Delete removes the entry. Deleting an absent key is not an error.
	Delete(key string) error
}

// ErrQuotaExceeded is returned by backends that enforce a size budget.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryBackend keeps entries in a map. MaxBytes, when non-zero, makes Set
// fail with ErrQuotaExceeded for oversized entries so tests can exercise the
// store's quota recovery path.
type MemoryBackend struct {
	mu       sync.Mutex
	data     map[string][]byte
	MaxBytes int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (b *MemoryBackend) Set(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.MaxBytes > 0 && len(data) > b.MaxBytes {
		return ErrQuotaExceeded
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	b.data[key] = stored
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileBackend stores each entry as a file under Dir, written atomically with
// fsync so a crash never leaves a torn conversation on disk.
type FileBackend struct {
	Dir string
}

// NewFileBackend creates a file backend rooted at dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{Dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return b.Dir + string(os.PathSeparator) + key + ".json"
}

func (b *FileBackend) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (b *FileBackend) Set(key string, data []byte) error {
	return util.AtomicWriteFile(b.path(key), data, 0644)
}

func (b *FileBackend) Delete(key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
