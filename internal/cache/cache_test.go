package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache(100)
	ctx := context.Background()

	// Test Set and Get
	err := c.Set(ctx, "test-key", "42", time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := c.Get(ctx, "test-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if value != "42" {
		t.Errorf("Expected value 42, got %s", value)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	c := NewMemoryCache(100)
	ctx := context.Background()

	_, err := c.Get(ctx, "non-existent")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache(100)
	ctx := context.Background()

	// Set with very short TTL
	err := c.Set(ctx, "expire-key", "100", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Should be available immediately
	value, err := c.Get(ctx, "expire-key")
	if err != nil {
		t.Fatalf("Get failed before expiration: %v", err)
	}
	if value != "100" {
		t.Errorf("Expected value 100, got %s", value)
	}

	// Wait for expiration
	time.Sleep(100 * time.Millisecond)

	// Should be expired now
	_, err = c.Get(ctx, "expire-key")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after expiration, got %v", err)
	}
	if c.Exists(ctx, "expire-key") {
		t.Error("Exists should report false after expiration")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(100)
	ctx := context.Background()

	if err := c.Set(ctx, "del-key", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "del-key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "del-key"); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryCache(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.Set(ctx, fmt.Sprintf("key%d", i), "v", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	// Touch key0 so key1 becomes the eviction candidate
	if _, err := c.Get(ctx, "key0"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if err := c.Set(ctx, "key3", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if c.Len() != 3 {
		t.Errorf("Expected 3 entries after eviction, got %d", c.Len())
	}
	if _, err := c.Get(ctx, "key1"); err != ErrCacheMiss {
		t.Errorf("Expected key1 to be evicted, got %v", err)
	}
	if _, err := c.Get(ctx, "key0"); err != nil {
		t.Errorf("Expected key0 to survive eviction, got %v", err)
	}
}

func TestMemoryCache_SetExistingDoesNotEvict(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	_ = c.Set(ctx, "a", "1", time.Minute)
	_ = c.Set(ctx, "b", "2", time.Minute)
	// Overwrite must update in place, not evict
	_ = c.Set(ctx, "a", "3", time.Minute)

	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}
	value, err := c.Get(ctx, "a")
	if err != nil || value != "3" {
		t.Errorf("Expected a=3, got %s err=%v", value, err)
	}
	if _, err := c.Get(ctx, "b"); err != nil {
		t.Errorf("Expected b to survive overwrite, got %v", err)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(1000)
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d-%d", g, i)
				_ = c.Set(ctx, key, "v", time.Minute)
				_, _ = c.Get(ctx, key)
				_ = c.Delete(ctx, key)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}
