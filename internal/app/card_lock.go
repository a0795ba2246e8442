package app

import "sync"

// cardLocks serializes workflow operations per card id.
type cardLocks struct {
	mu    sync.Mutex
	locks map[int64]*cardLock
}

// cardLock is one reference-counted per-card mutex.
type cardLock struct {
	mu   sync.Mutex
	refs int
}

// newCardLocks constructs an empty lock table.
func newCardLocks() *cardLocks {
	return &cardLocks{locks: map[int64]*cardLock{}}
}

// lock blocks until the caller holds the card's lock and returns the release func.
func (c *cardLocks) lock(cardID int64) func() {
	c.mu.Lock()
	entry, ok := c.locks[cardID]
	if !ok {
		entry = &cardLock{}
		c.locks[cardID] = entry
	}
	entry.refs++
	c.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		c.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(c.locks, cardID)
		}
		c.mu.Unlock()
	}
}

// size returns the number of cards with a held or awaited lock.
func (c *cardLocks) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}
