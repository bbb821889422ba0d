package compare

import (
	"sync"

	"github.com/veridoc/compliance-mcp/models"
)

// Cache holds the outcome of the most recent comparison run, success or
// failure. It is a single slot: every run overwrites it, so readers
// always see the latest outcome even when persistence is unavailable.
type Cache struct {
	mu      sync.RWMutex
	items   []models.ComparisonItem
	failure *models.ComparisonFailure
	set     bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Set records a successful run, clearing any cached failure.
func (c *Cache) Set(items []models.ComparisonItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.failure = nil
	c.set = true
}

// SetFailure records a failed run, clearing any cached results.
func (c *Cache) SetFailure(failure *models.ComparisonFailure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.failure = failure
	c.set = true
}

// Get returns the latest outcome. ok is false until the first run
// completes.
func (c *Cache) Get() (items []models.ComparisonItem, failure *models.ComparisonFailure, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items, c.failure, c.set
}
