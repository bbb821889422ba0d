package compare

import (
	"testing"

	"github.com/veridoc/compliance-mcp/models"
)

func TestCacheEmpty(t *testing.T) {
	cache := NewCache()
	items, failure, ok := cache.Get()
	if ok || items != nil || failure != nil {
		t.Errorf("fresh cache returned (%v, %v, %v), want empty", items, failure, ok)
	}
}

func TestCacheLastWriterWins(t *testing.T) {
	cache := NewCache()

	cache.Set([]models.ComparisonItem{{ID: 1, Section: "3.1"}})
	items, failure, ok := cache.Get()
	if !ok || failure != nil || len(items) != 1 {
		t.Fatalf("after Set: (%v, %v, %v)", items, failure, ok)
	}

	// A later failure replaces the cached results entirely.
	cache.SetFailure(&models.ComparisonFailure{Error: true, Message: "boom"})
	items, failure, ok = cache.Get()
	if !ok || items != nil || failure == nil || failure.Message != "boom" {
		t.Fatalf("after SetFailure: (%v, %v, %v)", items, failure, ok)
	}

	// And a later success clears the failure.
	cache.Set([]models.ComparisonItem{{ID: 2}})
	items, failure, ok = cache.Get()
	if !ok || failure != nil || len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("after second Set: (%v, %v, %v)", items, failure, ok)
	}
}
