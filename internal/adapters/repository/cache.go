package repository

import (
	"sync"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/metrics"
)

type cacheKey struct {
	meetID string
	mode   model.ViewMode
}

type cached struct {
	revision int64
	result   ranking.Result
}

// ResultCache holds the latest computed result per meet and view mode.
// Results of an older revision never replace newer ones.
type ResultCache struct {
	mu      sync.RWMutex
	results map[cacheKey]cached
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{results: make(map[cacheKey]cached)}
}

// Put stores res for (meetID, mode) unless a newer revision is cached. It
// reports whether the result was stored.
func (c *ResultCache) Put(meetID string, mode model.ViewMode, revision int64, res ranking.Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey{meetID: meetID, mode: mode}
	if cur, ok := c.results[k]; ok && cur.revision > revision {
		return false
	}
	c.results[k] = cached{revision: revision, result: res}
	return true
}

// Get returns the cached result of (meetID, mode) when it was computed from
// revision.
func (c *ResultCache) Get(meetID string, mode model.ViewMode, revision int64) (ranking.Result, bool) {
	c.mu.RLock()
	cur, ok := c.results[cacheKey{meetID: meetID, mode: mode}]
	c.mu.RUnlock()
	if !ok || cur.revision != revision {
		metrics.RecordCacheMiss()
		return ranking.Result{}, false
	}
	metrics.RecordCacheHit()
	return cur.result, true
}

// Invalidate drops every cached mode of meetID.
func (c *ResultCache) Invalidate(meetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.results {
		if k.meetID == meetID {
			delete(c.results, k)
		}
	}
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
