package cache

import (
	"container/heap"
	"context"
	"sync"
)

// BoundedCache is an in-process EntryCache capped at a fixed number of keys.
// When full, the entry with the oldest timestamp is evicted.
type BoundedCache struct {
	mu       sync.RWMutex
	m        map[string]*slot
	byAge    ageHeap
	capacity int
}

type slot struct {
	key   string
	entry Entry
	index int
}

// ageHeap is a min-heap on entry timestamp.
type ageHeap []*slot

func (h ageHeap) Len() int { return len(h) }
func (h ageHeap) Less(i, j int) bool {
	return h[i].entry.Timestamp.Before(h[j].entry.Timestamp)
}
func (h ageHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *ageHeap) Push(x any) {
	s := x.(*slot)
	s.index = len(*h)
	*h = append(*h, s)
}
func (h *ageHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}

func NewBoundedCache(capacity int) *BoundedCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &BoundedCache{m: make(map[string]*slot), capacity: capacity}
}

func (c *BoundedCache) Get(_ context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.m[key]
	if !ok {
		return Entry{}, false, nil
	}
	return s.entry, true, nil
}

func (c *BoundedCache) Put(_ context.Context, key string, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.m[key]; ok {
		s.entry = e
		heap.Fix(&c.byAge, s.index)
		return nil
	}
	if len(c.m) >= c.capacity {
		oldest := heap.Pop(&c.byAge).(*slot)
		delete(c.m, oldest.key)
	}
	s := &slot{key: key, entry: e}
	heap.Push(&c.byAge, s)
	c.m[key] = s
	return nil
}

// Len returns the number of cached keys.
func (c *BoundedCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
