package expr

import (
	"container/list"
	"sync"
)

// compiledCache is a bounded LRU cache of parsed expression ASTs, keyed
// by source text. Workflows re-evaluate the same condition/transform
// expressions on every loop iteration, so caching the parse avoids
// re-lexing identical source on the hot path.
type compiledCache struct {
	capacity int
	mu       sync.RWMutex
	items    map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key string
	ast Node
}

func newCompiledCache(capacity int) *compiledCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &compiledCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *compiledCache) get(src string) (Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[src]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).ast, true
}

func (c *compiledCache) put(src string, ast Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[src]; ok {
		el.Value.(*cacheEntry).ast = ast
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheEntry{key: src, ast: ast})
	c.items[src] = el
	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *compiledCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).key)
}

func (c *compiledCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// defaultCache backs the package-level parseCached helper that Evaluate
// uses for every expression, so sources evaluated repeatedly (while-loop
// conditions, interpolation inside loop bodies) are parsed once.
var defaultCache = newCompiledCache(512)

func parseCached(src string) (Node, error) {
	if ast, ok := defaultCache.get(src); ok {
		return ast, nil
	}
	ast, err := parse(src)
	if err != nil {
		return nil, err
	}
	defaultCache.put(src, ast)
	return ast, nil
}
