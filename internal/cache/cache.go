package cache

import (
	"sync"

	"github.com/planforge/planforge/internal/model"
)

// DocumentCache caches repository documents fetched during a source refresh
// pass to avoid repeated reads of the same path.
type DocumentCache struct {
	m    sync.Mutex
	Docs map[string]model.Document
}

func NewDocumentCache() *DocumentCache {
	return &DocumentCache{
		m:    sync.Mutex{},
		Docs: make(map[string]model.Document),
	}
}

func (c *DocumentCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Docs = make(map[string]model.Document)
}

func (c *DocumentCache) Get(path string) (model.Document, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if d, ok := c.Docs[path]; ok {
		return d, true
	}
	return model.Document{}, false
}

func (c *DocumentCache) Add(d model.Document) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Docs[d.Path()] = d
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
