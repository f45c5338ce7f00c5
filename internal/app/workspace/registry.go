package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/observability/metrics"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/session"
)

type Options struct {
	API          apiclient.Config
	Storage      session.Backend
	Retry        query.RetryPolicy
	IdleTTL      time.Duration
	PollInterval time.Duration
	FocusWindow  time.Duration
	Logger       *zap.Logger
}

// Registry holds the live workspaces. A workspace unused for IdleTTL is closed and evicted; its
// persisted session survives and is restored on the next request.
type Registry struct {
	mu    sync.Mutex
	items *cache.Cache
	opts  Options
}

func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.Storage == nil {
		opts.Storage = session.NewMemoryBackend(24 * time.Hour)
	}

	items := cache.New(opts.IdleTTL, time.Minute)
	items.OnEvicted(func(id string, v any) {
		if ws, ok := v.(*Workspace); ok {
			ws.Close()
			metrics.Get().ActiveWorkspaces.Add(context.Background(), -1)
			opts.Logger.Debug("Workspace evicted", zap.String("workspace", id))
		}
	})
	return &Registry{items: items, opts: opts}
}

// Get returns the workspace of id, creating and restoring it when needed. Each call extends the
// idle deadline.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) *Workspace {
	key := id.String()

	r.mu.Lock()
	var ws *Workspace
	if v, ok := r.items.Get(key); ok {
		ws = v.(*Workspace)
	} else {
		// closes an expired workspace the janitor has not collected yet
		r.items.Delete(key)
		ws = newWorkspace(id, r.opts)
		metrics.Get().ActiveWorkspaces.Add(ctx, 1)
		r.opts.Logger.Debug("Workspace created", zap.String("workspace", key))
	}
	r.items.Set(key, ws, cache.DefaultExpiration)
	r.mu.Unlock()

	ws.restore(context.WithoutCancel(ctx))
	return ws
}

// Drop closes and forgets the workspace of id.
func (r *Registry) Drop(id uuid.UUID) {
	r.items.Delete(id.String())
}

func (r *Registry) Len() int {
	return r.items.ItemCount()
}

// Close evicts every workspace.
func (r *Registry) Close() {
	for id := range r.items.Items() {
		r.items.Delete(id)
	}
}
