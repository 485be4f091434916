package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// Memory — LRU-кеш в памяти процесса с временем жизни записей.
type Memory struct {
	lru *lru.Cache
	now func() time.Time
}

// NewMemory создаёт кеш на size записей.
func NewMemory(size int) (*Memory, error) {
	const op = "cache.NewMemory"
	if size <= 0 {
		size = 1024
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Memory{lru: l, now: time.Now}, nil
}

// Get возвращает значение, если оно не устарело.
func (m *Memory) Get(_ context.Context, key string, result any) (bool, error) {
	const op = "cache.Memory.Get"
	v, ok := m.lru.Get(key)
	if !ok {
		return false, nil
	}
	e := v.(memoryEntry)
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return false, nil
	}
	if err := json.Unmarshal(e.data, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение; нулевой expiration означает бессрочное хранение.
func (m *Memory) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Memory.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	e := memoryEntry{data: data}
	if expiration > 0 {
		e.expires = m.now().Add(expiration)
	}
	m.lru.Add(key, e)
	return nil
}

// Invalidate удаляет ключ.
func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

// Len возвращает число записей.
func (m *Memory) Len() int {
	return m.lru.Len()
}
