package testutil

import (
	"fmt"
	"sync"
	"time"
)

// SeqIDs hands out p1, m2, p3... so tests can predict ids.
type SeqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *SeqIDs) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%d", prefix, s.n)
}

func (s *SeqIDs) NewPlayerID() (string, error) { return s.next("p"), nil }
func (s *SeqIDs) NewMatchID() (string, error)  { return s.next("m"), nil }

// TickClock advances one second on every call.
type TickClock struct {
	mu sync.Mutex
	T  time.Time
}

func NewTickClock() *TickClock {
	return &TickClock{T: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *TickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.T = c.T.Add(time.Second)
	return c.T
}
