package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Poller refetches registered queries on a fixed interval while focused reports true.
type Poller struct {
	c        *Client
	interval time.Duration
	focused  func() bool

	mu   sync.Mutex
	jobs map[string]func(context.Context) error
}

func NewPoller(c *Client, interval time.Duration, focused func() bool) *Poller {
	if focused == nil {
		focused = func() bool { return true }
	}
	return &Poller{
		c:        c,
		interval: interval,
		focused:  focused,
		jobs:     make(map[string]func(context.Context) error),
	}
}

// Watch registers q for background refresh. Registering the same key again replaces the query.
func Watch[T any](p *Poller, q Query[T]) {
	p.mu.Lock()
	p.jobs[q.Key.String()] = func(ctx context.Context) error {
		_, err := Refetch(ctx, p.c, q)
		return err
	}
	p.mu.Unlock()
}

func (p *Poller) Unwatch(k Key) {
	p.mu.Lock()
	delete(p.jobs, k.String())
	p.mu.Unlock()
}

// Reset forgets every watched query.
func (p *Poller) Reset() {
	p.mu.Lock()
	clear(p.jobs)
	p.mu.Unlock()
}

// Tick runs one polling pass and returns how many queries were refetched.
func (p *Poller) Tick(ctx context.Context) int {
	if !p.focused() {
		return 0
	}
	p.mu.Lock()
	jobs := make(map[string]func(context.Context) error, len(p.jobs))
	for k, fn := range p.jobs {
		jobs[k] = fn
	}
	p.mu.Unlock()

	for key, fn := range jobs {
		p.c.refresh(ctx, key, fn)
	}
	return len(jobs)
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.c.logger.Debug("Poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}
