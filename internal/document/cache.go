package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fourohfour/monetizer/internal/page"
)

// Cache memoizes compiled documents with LRU eviction and TTL. Keys are
// derived from the encoded config and the render options, so any edit to
// either produces a new entry.
type Cache struct {
	entries    map[string]*cacheEntry
	mutex      sync.Mutex
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	// LRU list with sentinel head and tail
	head *cacheEntry
	tail *cacheEntry

	hits      int64
	misses    int64
	evictions int64
}

type cacheEntry struct {
	key       string
	html      string
	createdAt time.Time
	prev      *cacheEntry
	next      *cacheEntry
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
}

// NewCache creates a cache holding at most maxEntries documents for ttl.
// A non-positive maxEntries disables caching.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		head:       &cacheEntry{},
		tail:       &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Compile returns the cached document for cfg and opts, compiling it on a
// miss. Countdown placeholders depend on opts.Now, which is truncated to
// the second for the key so a burst of requests shares one entry.
func (c *Cache) Compile(cfg *page.Config, opts Options) (string, error) {
	opts = opts.normalized()
	if c == nil || c.maxEntries <= 0 {
		return Compile(cfg, opts)
	}

	key, err := cacheKey(cfg, opts)
	if err != nil {
		return Compile(cfg, opts)
	}
	if html, ok := c.get(key); ok {
		return html, nil
	}

	html, err := Compile(cfg, opts)
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func cacheKey(cfg *page.Config, opts Options) (string, error) {
	data, err := page.Encode(cfg)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, "|%s|%s|%d|%s|%s|%d",
		opts.Plan, opts.AnalyticsEndpoint, opts.MissingRating, opts.CustomCode,
		opts.LiveReloadURL, opts.Now.Truncate(time.Second).Unix())
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cache) get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return "", false
	}
	if c.ttl > 0 && c.now().Sub(e.createdAt) > c.ttl {
		c.remove(e)
		atomic.AddInt64(&c.misses, 1)
		return "", false
	}
	c.moveToFront(e)
	atomic.AddInt64(&c.hits, 1)
	return e.html, true
}

func (c *Cache) set(key, html string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[key]; ok {
		e.html = html
		e.createdAt = c.now()
		c.moveToFront(e)
		return
	}

	for len(c.entries) >= c.maxEntries && c.tail.prev != c.head {
		c.remove(c.tail.prev)
		atomic.AddInt64(&c.evictions, 1)
	}

	e := &cacheEntry{key: key, html: html, createdAt: c.now()}
	c.entries[key] = e
	c.addToFront(e)
}

// Invalidate drops every entry. Entries are keyed by content, so this is
// only needed to release memory.
func (c *Cache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	c.mutex.Lock()
	n := len(c.entries)
	c.mutex.Unlock()
	return CacheStats{
		Entries:   n,
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}

func (c *Cache) remove(e *cacheEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.entries, e.key)
}

func (c *Cache) addToFront(e *cacheEntry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache) moveToFront(e *cacheEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}
