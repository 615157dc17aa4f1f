package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_BasicOperations(t *testing.T) {
	c := New[string](Config{DefaultTTL: time.Minute, SweepInterval: time.Hour})
	defer c.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set("key1", "value1", 0)

		val, ok := c.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, "value1", val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get("nonexistent")
		assert.False(t, ok)
		assert.Empty(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Set("key2", "original", 0)
		c.Set("key2", "updated", 0)

		val, ok := c.Get("key2")
		assert.True(t, ok)
		assert.Equal(t, "updated", val)
	})

	t.Run("HasAndDelete", func(t *testing.T) {
		c.Set("key3", "value3", 0)
		assert.True(t, c.Has("key3"))

		c.Delete("key3")
		assert.False(t, c.Has("key3"))
	})

	t.Run("Clear", func(t *testing.T) {
		c.Set("key4", "value4", 0)
		c.Clear()
		assert.Equal(t, 0, c.Size())
	})
}

func TestCache_Expiration(t *testing.T) {
	c := New[string](Config{DefaultTTL: time.Minute, SweepInterval: time.Hour})
	defer c.Close()

	c.Set("expiring", "value", 100*time.Millisecond)

	// Should exist immediately
	val, ok := c.Get("expiring")
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	// Wait for expiration
	time.Sleep(120 * time.Millisecond)

	// Should be treated as absent, never stale
	_, ok = c.Get("expiring")
	assert.False(t, ok)
}

func TestCache_Sweep(t *testing.T) {
	c := New[int](Config{DefaultTTL: time.Minute, SweepInterval: time.Hour})
	defer c.Close()

	c.Set("short", 1, 50*time.Millisecond)
	c.Set("long", 2, time.Minute)
	assert.Equal(t, 2, c.Size())

	time.Sleep(60 * time.Millisecond)

	// Expired entry still counted until swept; no read traffic touched it.
	assert.Equal(t, 2, c.Size())
	removed := c.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Size())

	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestCache_BackgroundSweep(t *testing.T) {
	c := New[string](Config{DefaultTTL: 50 * time.Millisecond, SweepInterval: 30 * time.Millisecond})
	defer c.Close()

	c.Set("temp", "data", 50*time.Millisecond)
	assert.Equal(t, 1, c.Size())

	// Wait for the sweeper to run past the TTL
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 0, c.Size())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](Config{DefaultTTL: time.Minute, SweepInterval: time.Hour})
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(fmt.Sprintf("key-%d", n%10), n, 0)
		}(i)
	}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Get(fmt.Sprintf("key-%d", n%10))
		}(i)
	}
	wg.Wait()
}

func TestCache_Close(t *testing.T) {
	c := New[string](DefaultConfig())

	// Should not panic, including on double close
	c.Close()
	c.Close()
}
