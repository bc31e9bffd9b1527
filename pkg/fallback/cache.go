package fallback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
)

var DefaultTTL, _ = iso8601.ParseISO8601("P1D")

// Cache owns the current fallback dataset and the time it was fetched. It is loaded on first use
// and again once the TTL has elapsed; the dataset itself is never mutated.
type Cache struct {
	Loader Loader
	TTL    iso8601.Duration
	Now    func() time.Time

	mutex     sync.RWMutex
	data      *Dataset
	fetchedAt time.Time
}

func NewCache(loader Loader, ttl iso8601.Duration) *Cache {
	if ttl == (iso8601.Duration{}) {
		ttl = DefaultTTL
	}

	return &Cache{
		Loader: loader,
		TTL:    ttl,
		Now:    time.Now,
	}
}

// Get returns the current dataset, reloading it first when it is missing or stale
func (c *Cache) Get(ctx context.Context) *Dataset {
	c.mutex.RLock()
	data, fetchedAt := c.data, c.fetchedAt
	c.mutex.RUnlock()

	if data != nil && !c.isStale(fetchedAt) {
		return data
	}

	return c.refresh(ctx, false)
}

// Refresh reloads the dataset regardless of its age
func (c *Cache) Refresh(ctx context.Context) *Dataset {
	return c.refresh(ctx, true)
}

func (c *Cache) FetchedAt() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.fetchedAt
}

func (c *Cache) isStale(fetchedAt time.Time) bool {
	return c.now().After(c.TTL.Shift(fetchedAt))
}

func (c *Cache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Cache) refresh(ctx context.Context, force bool) *Dataset {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Another caller may have reloaded while this one waited for the lock
	if !force && c.data != nil && !c.isStale(c.fetchedAt) {
		return c.data
	}

	startTime := time.Now()
	dataset, err := c.Loader.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load static fallback, continuing with an empty one")
		dataset = EmptyDataset()
	} else {
		log.Info().
			Int("lines", len(dataset.FirstLast)).
			Int("stoplists", len(dataset.Stops)).
			Dur("duration", time.Since(startTime)).
			Msg("Loaded static fallback")
	}

	c.data = dataset
	c.fetchedAt = c.now()

	return c.data
}
