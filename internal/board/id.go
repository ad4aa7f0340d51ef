package board

import (
	"sync"
	"time"
)

// IDGenerator issues strictly increasing entry ids derived from the
// millisecond clock. When two ids are requested within the same millisecond,
// or the clock moves backwards, the next id is the previous one plus one.
type IDGenerator struct {
	mu   sync.Mutex
	last uint64
	now  func() time.Time
}

// NewIDGenerator creates a generator reading the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a new id and the time it was derived from.
func (g *IDGenerator) Next() (uint64, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	at := g.now()
	id := uint64(at.UnixMilli())
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id, at
}

// Observe raises the floor so that every later id is greater than id.
// It is used to continue numbering after ids loaded from a store.
func (g *IDGenerator) Observe(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
