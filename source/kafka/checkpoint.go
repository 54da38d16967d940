package kafka

import (
	"sync"
	"time"
)

// Checkpointer decides when a consumer group session should commit the
// offsets it has marked: at most once per interval, and only after at least
// one record was resolved since the last commit.
type Checkpointer struct {
	every time.Duration
	now   func() time.Time

	mu       sync.Mutex
	last     time.Time
	marked   int64
	inflight int64
}

func NewCheckpointer(every time.Duration) *Checkpointer {
	return &Checkpointer{every: every, now: time.Now}
}

// Track registers one record and returns its resolver. The resolver reports
// whether a commit is due; calling it again is a no-op that reports false.
func (c *Checkpointer) Track() func() bool {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	var once sync.Once
	return func() bool {
		due := false
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.inflight--
			c.marked++
			if now := c.now(); now.Sub(c.last) >= c.every {
				c.last, c.marked = now, 0
				due = true
			}
		})
		return due
	}
}

// InFlight is the number of tracked records not yet resolved.
func (c *Checkpointer) InFlight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Dirty reports whether records were resolved since the last commit.
func (c *Checkpointer) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marked > 0
}
