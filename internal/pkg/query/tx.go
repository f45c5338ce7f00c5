package query

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/observability/metrics"
)

var ErrTxDone = errors.New("query: transaction already committed or rolled back")

// Tx is one mutation's view of the cache. Begin snapshots every entry under the given prefixes;
// Rollback restores exactly that snapshot, deleting entries that did not exist at Begin.
type Tx struct {
	c        *Client
	mu       sync.Mutex
	prefixes []Key
	snapshot map[string]snapshotEntry
	families map[string]struct{}
	stale    []Key
	done     bool
	settled  bool
}

type snapshotEntry struct {
	key     Key
	entry   entry
	existed bool
}

// Begin starts a mutation over the entries under prefixes.
func (c *Client) Begin(prefixes ...Key) *Tx {
	tx := &Tx{
		c:        c,
		prefixes: prefixes,
		snapshot: make(map[string]snapshotEntry),
		families: make(map[string]struct{}),
	}
	c.mu.Lock()
	for _, e := range c.matching(prefixes...) {
		tx.snapshot[e.key.String()] = snapshotEntry{key: e.key, entry: e, existed: true}
	}
	c.mu.Unlock()
	for _, p := range prefixes {
		if f := p.Family(); f != "" {
			tx.families[f] = struct{}{}
		}
	}
	return tx
}

// capture records the pre-mutation state of k the first time the transaction touches it. Callers
// hold c.mu.
func (tx *Tx) capture(k Key) {
	s := k.String()
	if _, ok := tx.snapshot[s]; ok {
		return
	}
	for _, p := range tx.prefixes {
		if k.HasPrefix(p) {
			// under a snapshotted prefix but absent at Begin
			tx.snapshot[s] = snapshotEntry{key: k}
			return
		}
	}
	e, ok := tx.c.lookup(k)
	tx.snapshot[s] = snapshotEntry{key: k, entry: e, existed: ok}
}

// Apply rewrites every cached value under prefix with fn. fn must not modify its argument in
// place; the snapshot shares it. Returning false leaves the entry untouched.
func (tx *Tx) Apply(prefix Key, fn func(k Key, old any) (any, bool)) int {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return 0
	}
	tx.c.mu.Lock()
	defer tx.c.mu.Unlock()

	n := 0
	for _, e := range tx.c.matching(prefix) {
		v, ok := fn(e.key, e.data)
		if !ok {
			continue
		}
		tx.capture(e.key)
		e.data = v
		tx.c.put(e)
		n++
	}
	tx.families[prefix.Family()] = struct{}{}
	return n
}

// Update is Apply for entries holding a T; entries of other types are skipped.
func Update[T any](tx *Tx, prefix Key, fn func(T) (T, bool)) int {
	return tx.Apply(prefix, func(_ Key, old any) (any, bool) {
		v, ok := old.(T)
		if !ok {
			return nil, false
		}
		return fn(v)
	})
}

// Set writes v under k as a fresh entry.
func (tx *Tx) Set(k Key, v any) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return
	}
	tx.c.mu.Lock()
	tx.capture(k)
	tx.c.put(entry{key: k, data: v, updatedAt: tx.c.now(), staleTime: TierFor(k).Stale})
	tx.c.mu.Unlock()
	tx.families[k.Family()] = struct{}{}
}

// Invalidate queues prefix to be marked stale when the transaction settles.
func (tx *Tx) Invalidate(prefix Key) {
	tx.mu.Lock()
	tx.stale = append(tx.stale, prefix)
	tx.mu.Unlock()
}

// Commit keeps the current cache contents. Values written with Set after the backend answered are
// the authoritative ones.
func (tx *Tx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.snapshot = nil
	return nil
}

// Rollback restores every entry captured by the transaction to its state at Begin. Calling it more
// than once, or after Commit, has no effect.
func (tx *Tx) Rollback() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return
	}
	tx.done = true

	tx.c.mu.Lock()
	for s, snap := range tx.snapshot {
		if snap.existed {
			tx.c.put(snap.entry)
		} else {
			tx.c.entries.Delete(s)
		}
	}
	tx.c.mu.Unlock()

	metrics.Get().MutationRollbacks.Add(context.Background(), 1,
		metric.WithAttributes(attribute.StringSlice("families", tx.familyList())))
	tx.c.logger.Debug("Rolled back mutation", zap.Int("entries", len(tx.snapshot)))
	tx.snapshot = nil
}

// Settle marks stale the queued prefixes and every prefix that depends on the families this
// transaction touched. It runs once, whatever the outcome.
func (tx *Tx) Settle() {
	tx.mu.Lock()
	if tx.settled {
		tx.mu.Unlock()
		return
	}
	tx.settled = true
	prefixes := append(tx.stale, tx.c.graph.Dependents(tx.familyList()...)...)
	tx.mu.Unlock()

	for _, p := range prefixes {
		tx.c.Invalidate(p)
	}
}

func (tx *Tx) familyList() []string {
	out := make([]string, 0, len(tx.families))
	for f := range tx.families {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
