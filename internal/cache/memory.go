package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	key       string
	value     string
	expiresAt time.Time
}

// Compile-time interface check.
var _ Cache = (*MemoryCache)(nil)

// MemoryCache implements Cache with bounded in-process storage.
// Eviction is least-recently-used once capacity is reached; expiry is
// checked lazily on read.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
}

// NewMemoryCache creates a memory cache holding at most capacity entries.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = 10000
	}
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a value from cache.
func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, exists := m.items[key]
	if !exists {
		return "", ErrCacheMiss
	}

	item := elem.Value.(*memoryItem)
	// Lazy expiration check
	if time.Now().After(item.expiresAt) {
		m.removeLocked(elem)
		return "", ErrCacheMiss
	}

	m.order.MoveToFront(elem)
	return item.value, nil
}

// Set stores a value in cache with TTL, evicting the least recently used
// entry when full.
func (m *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	if elem, exists := m.items[key]; exists {
		item := elem.Value.(*memoryItem)
		item.value = value
		item.expiresAt = expiresAt
		m.order.MoveToFront(elem)
		return nil
	}

	if m.order.Len() >= m.capacity {
		if oldest := m.order.Back(); oldest != nil {
			m.removeLocked(oldest)
		}
	}

	elem := m.order.PushFront(&memoryItem{key: key, value: value, expiresAt: expiresAt})
	m.items[key] = elem
	return nil
}

// Delete removes a key from cache.
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, exists := m.items[key]; exists {
		m.removeLocked(elem)
	}
	return nil
}

// Exists reports whether the key is present and unexpired.
func (m *MemoryCache) Exists(ctx context.Context, key string) bool {
	_, err := m.Get(ctx, key)
	return err == nil
}

// Close cleans up resources.
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.order.Init()
	return nil
}

// Health checks if the cache is healthy (always true for memory cache).
func (m *MemoryCache) Health(ctx context.Context) error {
	return nil
}

// Len reports the current entry count.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *MemoryCache) removeLocked(elem *list.Element) {
	item := elem.Value.(*memoryItem)
	delete(m.items, item.key)
	m.order.Remove(elem)
}
