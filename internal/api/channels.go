package api

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const channelsCacheKey = "channels"

// Directory serves the channel list for the filter UI. Lookups are cached
// with a TTL so reopening the filter form does not refetch, and failures
// degrade to an empty list: the filter bar falls back to free-form entry
// rather than breaking.
type Directory struct {
	svc   Service
	cache *gocache.Cache
}

// NewDirectory creates a channel directory over the given service.
func NewDirectory(svc Service, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Directory{
		svc:   svc,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Channels returns the channel list, served from cache when fresh.
// It never fails: on error the cached value (possibly empty) is returned.
func (d *Directory) Channels(ctx context.Context) []string {
	if cached, ok := d.cache.Get(channelsCacheKey); ok {
		return cached.([]string)
	}
	return d.Refresh(ctx)
}

// Refresh bypasses the cache and refetches the channel list.
func (d *Directory) Refresh(ctx context.Context) []string {
	channels, err := d.svc.ListChannels(ctx)
	if err != nil {
		return nil
	}
	d.cache.SetDefault(channelsCacheKey, channels)
	return channels
}
