package recurrence

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/cyp0633/librepeat/event"
)

// CacheEntry represents a cached expansion result
type CacheEntry struct {
	Occurrences []event.Event
	ExpiresAt   time.Time
	AccessedAt  time.Time
}

// ExpansionCache caches UntilEndDate results. Stored and returned slices
// are copies, so callers may modify what they get back.
type ExpansionCache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// NewExpansionCache creates a new expansion cache with the given configuration
func NewExpansionCache(config CacheConfig) *ExpansionCache {
	cache := &ExpansionCache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// generateCacheKey hashes every input that can change the expanded series
func (c *ExpansionCache) generateCacheKey(base event.Event, endDate string, limits Limits) string {
	hasher := sha256.New()

	// NUL separators keep adjacent fields from running together
	write := func(parts ...string) {
		for _, p := range parts {
			hasher.Write([]byte(p))
			hasher.Write([]byte{0})
		}
	}

	write(base.ID.OrEmpty(), base.Title, base.Date, base.StartTime, base.EndTime)
	write(base.Description, base.Location, base.Category, strconv.Itoa(base.NotificationTime))
	write(base.Repeat.Type.String(), strconv.Itoa(base.Repeat.Interval), base.Repeat.ID.OrEmpty(), base.Repeat.EndDate.OrEmpty())
	write(endDate)
	write(strconv.Itoa(limits.Daily), strconv.Itoa(limits.Weekly), strconv.Itoa(limits.Monthly), strconv.Itoa(limits.Yearly))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a cached result if it exists and hasn't expired
func (c *ExpansionCache) Get(base event.Event, endDate string, limits Limits) ([]event.Event, bool) {
	key := c.generateCacheKey(base, endDate, limits)

	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return nil, false
	}

	c.mutex.Lock()
	entry.AccessedAt = now
	c.mutex.Unlock()

	return slices.Clone(entry.Occurrences), true
}

// Set stores a result in the cache
func (c *ExpansionCache) Set(base event.Event, endDate string, limits Limits, occurrences []event.Event) {
	key := c.generateCacheKey(base, endDate, limits)
	now := time.Now()

	entry := &CacheEntry{
		Occurrences: slices.Clone(occurrences),
		ExpiresAt:   now.Add(c.ttl),
		AccessedAt:  now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently accessed ones
// while over the limit. Callers hold the write lock.
func (c *ExpansionCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	type keyAccess struct {
		key        string
		accessedAt time.Time
	}

	keyAccessList := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		keyAccessList = append(keyAccessList, keyAccess{key: key, accessedAt: entry.AccessedAt})
	}

	// oldest first
	slices.SortFunc(keyAccessList, func(a, b keyAccess) int {
		return a.accessedAt.Compare(b.accessedAt)
	})

	entriesToRemove := len(c.entries) - c.maxEntries
	for i := 0; i < entriesToRemove; i++ {
		delete(c.entries, keyAccessList[i].key)
	}
}

func (c *ExpansionCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache. It is safe to call more than once.
func (c *ExpansionCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *ExpansionCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
