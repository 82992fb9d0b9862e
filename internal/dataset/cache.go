package dataset

import (
	"context"
	"sync"
	"time"
)

// LoadFunc produces a Dataset. It takes no arguments that vary between
// calls, so a Cache memoises exactly one result.
type LoadFunc func(ctx context.Context) (*Dataset, error)

// Cache memoises the first successful load for the life of the process.
// Failed loads are not remembered; the next Get retries.
type Cache struct {
	load LoadFunc

	mu       sync.Mutex
	ds       *Dataset
	loadedAt time.Time
}

// NewCache wraps load.
func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load}
}

// NewFileCache caches Load(opts).
func NewFileCache(opts Options) *Cache {
	return NewCache(func(ctx context.Context) (*Dataset, error) {
		return Load(ctx, opts)
	})
}

// Get returns the cached Dataset, loading it on first use.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ds != nil {
		return c.ds, nil
	}

	ds, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.ds = ds
	c.loadedAt = time.Now()
	return ds, nil
}

// LoadedAt reports when the Dataset was loaded; zero if it has not been.
func (c *Cache) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}
