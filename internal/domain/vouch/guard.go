package vouch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Key builds the canonical tuple key for a vouch attempt.
func Key(voucherID, receiverID string, sessionID int64) string {
	return fmt.Sprintf("%s|%s|%d", voucherID, receiverID, sessionID)
}

// Guard records seen vouch tuples so each (voucher, receiver, session)
// is applied at most once, even when two identical requests race ahead
// of the store's own uniqueness check.
type Guard interface {
	// SeenAndRecord atomically checks if key was seen and records it if
	// not. Returns true if key was already seen, false if it was newly
	// recorded. This is the only check-and-set entry point.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing the tuple to be retried. Used
	// when a vouch was recorded here but the rating commit ultimately
	// failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// entry is a single node in the eviction list.
type entry struct {
	key  string
	next *entry
}

func (e *entry) reset() {
	e.key = ""
	e.next = nil
}

// memoryGuard implements Guard with a bounded map plus a linked list
// evicted LIFO. Unbounded mode (maxSize <= 0) degrades to a plain map.
type memoryGuard struct {
	mu      sync.Mutex
	seen    map[string]*entry
	head    *entry
	maxSize int
	size    atomic.Int64
	pool    sync.Pool
}

// NewGuard creates an in-memory guard with configuration options.
func NewGuard(opts ...Option) Guard {
	g := &memoryGuard{
		maxSize: defaultGuardSize,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.seen = make(map[string]*entry)
	if g.maxSize > 0 {
		g.pool = sync.Pool{
			New: func() interface{} {
				return &entry{}
			},
		}
	}
	return g
}

// SeenAndRecord atomically checks and records key.
func (g *memoryGuard) SeenAndRecord(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.seen[key]; exists {
		return true
	}

	if g.maxSize > 0 {
		if len(g.seen) >= g.maxSize {
			g.evictOldest()
		}
		e := g.pool.Get().(*entry)
		e.key = key
		e.next = g.head
		g.head = e
		g.seen[key] = e
	} else {
		g.seen[key] = nil
	}
	g.size.Add(1)
	return false
}

// Unrecord removes key from the seen set.
func (g *memoryGuard) Unrecord(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, exists := g.seen[key]
	if !exists {
		return
	}
	delete(g.seen, key)
	g.size.Add(-1)

	if g.maxSize <= 0 {
		return
	}
	if g.head == e {
		g.head = e.next
	} else {
		cur := g.head
		for cur != nil && cur.next != e {
			cur = cur.next
		}
		if cur != nil {
			cur.next = e.next
		}
	}
	e.reset()
	g.pool.Put(e)
}

// evictOldest drops the tail of the list. Caller holds g.mu.
func (g *memoryGuard) evictOldest() {
	if g.head == nil {
		return
	}
	if g.head.next == nil {
		delete(g.seen, g.head.key)
		g.head.reset()
		g.pool.Put(g.head)
		g.head = nil
		g.size.Add(-1)
		return
	}

	var prev *entry
	cur := g.head
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}
	prev.next = nil
	delete(g.seen, cur.key)
	cur.reset()
	g.pool.Put(cur)
	g.size.Add(-1)
}

// Size returns the current number of recorded tuples.
func (g *memoryGuard) Size() int64 {
	return g.size.Load()
}
