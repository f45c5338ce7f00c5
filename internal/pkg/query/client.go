package query

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/ach-dashboard/internal/app/observability/metrics"
)

const (
	defaultGCGrace  = 5 * time.Minute
	cleanupInterval = time.Minute
)

type Options struct {
	// GCGrace is how long an entry outlives its staleness window before it is dropped.
	GCGrace time.Duration
	Retry   RetryPolicy
	Graph   Graph
	Logger  *zap.Logger
}

// Client is the cache of one browser session. It is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	entries *cache.Cache
	flight  singleflight.Group
	gcGrace time.Duration
	retry   RetryPolicy
	graph   Graph
	logger  *zap.Logger
	now     func() time.Time
}

type entry struct {
	key         Key
	data        any
	updatedAt   time.Time
	staleTime   time.Duration
	invalidated bool
}

// State is a read-only view of a cache entry.
type State struct {
	Data      any
	UpdatedAt time.Time
	Stale     bool
}

func NewClient(opts Options) *Client {
	if opts.GCGrace <= 0 {
		opts.GCGrace = defaultGCGrace
	}
	if opts.Graph == nil {
		opts.Graph = DefaultGraph()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}
	return &Client{
		entries: cache.New(cache.NoExpiration, cleanupInterval),
		gcGrace: opts.GCGrace,
		retry:   opts.Retry,
		graph:   opts.Graph,
		logger:  opts.Logger,
		now:     time.Now,
	}
}

func (c *Client) isStale(e entry) bool {
	return e.invalidated || c.now().Sub(e.updatedAt) >= e.staleTime
}

func (c *Client) lookup(k Key) (entry, bool) {
	v, ok := c.entries.Get(k.String())
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	return e, ok
}

// put stores e, expiring it gcGrace after it goes stale.
func (c *Client) put(e entry) {
	ttl := e.updatedAt.Add(e.staleTime + c.gcGrace).Sub(c.now())
	if ttl <= 0 {
		ttl = c.gcGrace
	}
	c.entries.Set(e.key.String(), e, ttl)
}

func (c *Client) store(k Key, tier Tier, v any) {
	c.mu.Lock()
	c.put(entry{key: k, data: v, updatedAt: c.now(), staleTime: tier.Stale})
	c.mu.Unlock()
}

// matching returns every live entry whose key starts with one of the prefixes.
func (c *Client) matching(prefixes ...Key) []entry {
	var out []entry
	for _, item := range c.entries.Items() {
		e, ok := item.Object.(entry)
		if !ok {
			continue
		}
		for _, p := range prefixes {
			if e.key.HasPrefix(p) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func (c *Client) State(k Key) (State, bool) {
	e, ok := c.lookup(k)
	if !ok {
		return State{}, false
	}
	return State{Data: e.data, UpdatedAt: e.updatedAt, Stale: c.isStale(e)}, true
}

func (c *Client) GetData(k Key) (any, bool) {
	e, ok := c.lookup(k)
	if !ok {
		return nil, false
	}
	return e.data, true
}

// GetQueryData returns the cached value of k when it holds a T.
func GetQueryData[T any](c *Client, k Key) (T, bool) {
	var zero T
	v, ok := c.GetData(k)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// SetData writes v as a fresh entry with the key's default tier.
func (c *Client) SetData(k Key, v any) {
	c.store(k, TierFor(k), v)
}

// Invalidate marks every entry under prefix stale so the next read refetches it. It returns the
// number of entries marked.
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.matching(prefix) {
		e.invalidated = true
		c.put(e)
		n++
	}
	if n > 0 {
		metrics.Get().InvalidationsTotal.Add(context.Background(), int64(n),
			metric.WithAttributes(attribute.String("family", prefix.Family())))
		c.logger.Debug("Invalidated cache entries", zap.Stringer("prefix", prefix), zap.Int("count", n))
	}
	return n
}

// Remove drops every entry under prefix.
func (c *Client) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.matching(prefix) {
		c.entries.Delete(e.key.String())
		n++
	}
	return n
}

func (c *Client) Clear() {
	c.entries.Flush()
}

// Len is the number of live entries.
func (c *Client) Len() int {
	return c.entries.ItemCount()
}
