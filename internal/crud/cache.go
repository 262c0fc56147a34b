package crud

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ListCache keeps fetched lists per viewer so that paging back to a screen
// does not refetch. Every mutation invalidates the endpoint.
type ListCache struct {
	lists *expirable.LRU[string, []ListItem]
}

// NewListCache creates a cache holding up to size lists for ttl each.
func NewListCache(size int, ttl time.Duration) *ListCache {
	if size <= 0 {
		size = 256
	}
	return &ListCache{lists: expirable.NewLRU[string, []ListItem](size, nil, ttl)}
}

func cacheKey(scope, locale, endpoint string) string {
	return scope + "|" + endpoint + "|" + locale
}

// Get returns the cached list.
func (c *ListCache) Get(scope, locale, endpoint string) ([]ListItem, bool) {
	if c == nil {
		return nil, false
	}
	return c.lists.Get(cacheKey(scope, locale, endpoint))
}

// Put stores a list.
func (c *ListCache) Put(scope, locale, endpoint string, items []ListItem) {
	if c == nil {
		return
	}
	c.lists.Add(cacheKey(scope, locale, endpoint), items)
}

// Invalidate drops every cached locale of endpoint for scope.
func (c *ListCache) Invalidate(scope, endpoint string) {
	if c == nil {
		return
	}
	prefix := scope + "|" + endpoint + "|"
	for _, k := range c.lists.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lists.Remove(k)
		}
	}
}

// InvalidateScope drops everything cached for scope.
func (c *ListCache) InvalidateScope(scope string) {
	if c == nil {
		return
	}
	prefix := scope + "|"
	for _, k := range c.lists.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lists.Remove(k)
		}
	}
}

// Len is the number of cached lists.
func (c *ListCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lists.Len()
}
