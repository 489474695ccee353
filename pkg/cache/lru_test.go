package cache_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/cache"
)

func byteLen(s string) int64 {
	return int64(len(s))
}

func TestLRU_GetPut(t *testing.T) {
	t.Parallel()

	c := cache.New[string, string](1024, byteLen)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", "hello world")

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "hello world", got)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(11), stats.CurrentSize)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.0001)
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := cache.New[int, string](100, byteLen)

	value := string(make([]byte, 40))
	c.Put(1, value)
	c.Put(2, value)
	c.Put(3, value)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.LessOrEqual(t, stats.CurrentSize, int64(100))

	_, ok := c.Get(3)
	assert.True(t, ok, "most recent entry survives")
}

func TestLRU_PrefersEvictingColdEntries(t *testing.T) {
	t.Parallel()

	c := cache.New[int, string](100, byteLen)

	value := string(make([]byte, 40))
	c.Put(1, value)
	c.Put(2, value)

	for range 5 {
		_, _ = c.Get(1)
	}

	// Entry 2 is the most recent but entry 1 is much hotter.
	_, _ = c.Get(2)
	c.Put(3, value)

	_, hot := c.Get(1)
	_, cold := c.Get(2)

	assert.True(t, hot)
	assert.False(t, cold)
}

func TestLRU_OversizedValueIgnored(t *testing.T) {
	t.Parallel()

	c := cache.New[string, string](4, byteLen)
	c.Put("big", "too large")

	_, ok := c.Get("big")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().CurrentSize)
}

func TestLRU_PutExistingKeepsValue(t *testing.T) {
	t.Parallel()

	c := cache.New[string, string](100, byteLen)
	c.Put("k", "first")
	c.Put("k", "second")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "first", got)
	assert.Equal(t, int64(5), c.Stats().CurrentSize)
}

func TestLRU_DefaultSizeAndClear(t *testing.T) {
	t.Parallel()

	c := cache.New[string, string](0, byteLen)
	assert.Equal(t, int64(cache.DefaultMaxSize), c.Stats().MaxSize)

	c.Put("a", "x")
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Entries)
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.New[string, string](1<<10, byteLen)

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range 100 {
				key := strconv.Itoa(i*100 + j)
				c.Put(key, key)
				_, _ = c.Get(key)
			}
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, c.Stats().CurrentSize, int64(1<<10))
}
