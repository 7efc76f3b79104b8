// Package storage provides the durable key/value contract the record store
// persists through, with memory, file, postgres and browser backends.
package storage

import (
	"errors"
	"sync"
)

var (
	ErrQueueFull   = errors.New("storage: write queue full")
	ErrUnavailable = errors.New("storage: backend unavailable")
	ErrInvalidKey  = errors.New("storage: invalid key")
)

// Storage mirrors the browser localStorage surface. GetItem reports a missing
// key as ok == false with a nil error.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok, nil
}

func (m *Memory) SetItem(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
