package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process string cache with per-key TTL. It backs the
// template cache when no redis instance is configured.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{items: map[string]entry{}}
}

// Get returns the value stored under key, or ErrMiss.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, exists := m.items[key]
	m.mu.RUnlock()
	if !exists || time.Now().After(e.expiresAt) {
		return "", ErrMiss
	}
	return e.value, nil
}

// Set stores value under key for ttl. Values are stringified the same way
// the redis client would stringify them.
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprintf("%v", v)
	}
	m.mu.Lock()
	m.items[key] = entry{value: s, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// DeletePrefix removes every key that starts with prefix.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	m.mu.Unlock()
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.items = map[string]entry{}
	m.mu.Unlock()
}
