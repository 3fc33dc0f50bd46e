package telegram

import (
	"container/list"
	"sync"
)

// updateDedup remembers the most recent update IDs so redelivered updates
// are handled once. The oldest ID is evicted when the set is full.
type updateDedup struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	seen     map[int64]*list.Element
}

func newUpdateDedup(capacity int) *updateDedup {
	if capacity <= 0 {
		capacity = 1000
	}
	return &updateDedup{
		capacity: capacity,
		order:    list.New(),
		seen:     make(map[int64]*list.Element, capacity),
	}
}

// Seen records id and reports whether it was already recorded.
func (d *updateDedup) Seen(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	d.seen[id] = d.order.PushBack(id)
	for d.order.Len() > d.capacity {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(int64))
	}
	return false
}

func (d *updateDedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
