package tracker

import (
	"price-tracker/internal/domain"

	gocache "github.com/patrickmn/go-cache"
)

// SeriesCache holds one normalized series per interval for the session.
// Entries never expire; the key space is bounded by the interval catalog.
type SeriesCache struct {
	store *gocache.Cache
}

func NewSeriesCache() *SeriesCache {
	return &SeriesCache{store: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the cached series for iv, if any.
func (c *SeriesCache) Get(iv domain.Interval) (domain.Series, bool) {
	v, ok := c.store.Get(iv.String())
	if !ok {
		return domain.Series{}, false
	}
	s, ok := v.(domain.Series)
	return s, ok
}

// Put stores s under iv, replacing any previous entry.
func (c *SeriesCache) Put(iv domain.Interval, s domain.Series) {
	c.store.Set(iv.String(), s, gocache.NoExpiration)
}

func (c *SeriesCache) Len() int {
	return c.store.ItemCount()
}
