package cliconf

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ProgramCache stores compiled programs keyed by expression or unit digest.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is an unbounded ProgramCache kept in memory.
type MemoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryProgramCache constructs an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{programs: make(map[string]any)}
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = make(map[string]any)
	}
	c.programs[key] = value
}

// Len reports how many programs are cached.
func (c *MemoryProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// WithProgramCache shares cache between the loader's engines and evaluators.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *loaderConfig) {
		cfg.programCache = cache
	}
}

func sourceKey(engine, path string, src []byte) string {
	sum := sha256.Sum256(src)
	return engine + ":" + path + ":" + hex.EncodeToString(sum[:])
}
