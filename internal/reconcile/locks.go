package reconcile

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// orderLocks hands out one mutex per order id so concurrent verifications of
// the same order serialize while different orders proceed in parallel.
// Entries are reference counted and dropped when the last holder releases.
type orderLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

func newOrderLocks() *orderLocks {
	return &orderLocks{
		entries: make(map[int64]*lockEntry),
	}
}

// acquire blocks until the caller holds the order's lock and returns the
// release function. Never call gateway I/O while holding it.
func (l *orderLocks) acquire(orderID int64) func() {
	l.mu.Lock()
	entry, ok := l.entries[orderID]
	if !ok {
		entry = &lockEntry{}
		l.entries[orderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, orderID)
		}
		l.mu.Unlock()
	}
}
