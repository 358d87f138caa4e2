package whisper

import "sync"

// AvailabilityCache records which whisper models have been observed on
// this host. Entries never expire for the life of the process, and a
// model that has been seen available is never downgraded: a transient
// probe failure after a positive result does not flip the entry back.
type AvailabilityCache struct {
	mu    sync.Mutex
	known map[string]bool
}

// NewAvailabilityCache returns an empty cache.
func NewAvailabilityCache() *AvailabilityCache {
	return &AvailabilityCache{known: make(map[string]bool)}
}

// Lookup reports the cached availability for model. known is false when
// the model has never been probed.
func (c *AvailabilityCache) Lookup(model string) (available, known bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	available, known = c.known[model]
	return available, known
}

// Record stores a probe outcome. Positive results are sticky: once a
// model is marked available, later negative records are ignored.
func (c *AvailabilityCache) Record(model string, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.known[model] {
		return
	}
	c.known[model] = available
}

// Snapshot returns a copy of the cache contents keyed by model.
func (c *AvailabilityCache) Snapshot() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.known))
	for model, available := range c.known {
		out[model] = available
	}
	return out
}
