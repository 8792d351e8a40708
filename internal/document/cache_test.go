package document

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := NewCache(4, time.Minute)
	cfg := baseConfig()

	first, err := c.Compile(cfg, testOptions())
	require.NoError(t, err)
	second, err := c.Compile(cfg, testOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestCacheKeyFollowsContent(t *testing.T) {
	c := NewCache(4, time.Minute)
	cfg := baseConfig()

	_, err := c.Compile(cfg, testOptions())
	require.NoError(t, err)

	cfg.Title = "Lost?"
	html, err := c.Compile(cfg, testOptions())
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Lost?</title>")
	assert.Equal(t, 2, c.Stats().Entries)

	opts := testOptions()
	opts.Plan = "pro"
	html, err = c.Compile(cfg, opts)
	require.NoError(t, err)
	assert.Contains(t, html, `data-analytics="beacon"`)
	assert.Equal(t, int64(3), c.Stats().Misses)
}

func TestCacheTTL(t *testing.T) {
	c := NewCache(4, time.Minute)
	clock := testNow
	c.now = func() time.Time { return clock }
	cfg := baseConfig()

	_, err := c.Compile(cfg, testOptions())
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	_, err = c.Compile(cfg, testOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Stats().Hits)

	clock = clock.Add(2 * time.Minute)
	_, err = c.Compile(cfg, testOptions())
	require.NoError(t, err)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, 0)
	cfgs := make([]string, 3)
	for i := range cfgs {
		cfgs[i] = fmt.Sprintf("page-%d", i)
	}
	compile := func(id string) {
		cfg := baseConfig()
		cfg.ID = id
		_, err := c.Compile(cfg, testOptions())
		require.NoError(t, err)
	}

	compile(cfgs[0])
	compile(cfgs[1])
	compile(cfgs[0]) // hit, page-0 becomes most recent
	compile(cfgs[2]) // evicts page-1

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(1), stats.Evictions)

	compile(cfgs[0])
	assert.Equal(t, int64(2), c.Stats().Hits)
	compile(cfgs[1])
	assert.Equal(t, int64(2), c.Stats().Hits)
}

func TestCacheDisabled(t *testing.T) {
	for _, c := range []*Cache{nil, NewCache(0, time.Minute)} {
		html, err := c.Compile(baseConfig(), testOptions())
		require.NoError(t, err)
		assert.Contains(t, html, "<!DOCTYPE html>")
	}
	assert.Equal(t, CacheStats{}, NewCache(0, time.Minute).Stats())
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(4, time.Minute)
	_, err := c.Compile(baseConfig(), testOptions())
	require.NoError(t, err)
	c.Invalidate()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCacheConcurrentCompile(t *testing.T) {
	c := NewCache(8, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := baseConfig()
			cfg.ID = fmt.Sprintf("page-%d", i%4)
			_, err := c.Compile(cfg, testOptions())
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	stats := c.Stats()
	assert.Equal(t, 4, stats.Entries)
	assert.Equal(t, int64(16), stats.Hits+stats.Misses)
}
