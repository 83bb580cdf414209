package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out sequential identifiers in the same zero-padded shape
// the fixture builders use ("booking-001", "span-002", ...), so ids generated
// through a service under test sort next to seeded fixture ids.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator for the given prefix, defaulting to
// "id" when empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%03d", g.prefix, g.counter)
}

// NextFunc adapts the generator to the id-func signature the services inject.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetCounter rewinds or fast-forwards the sequence for deterministic replays.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}
