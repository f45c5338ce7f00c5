// Package workspace binds one browser session to its own session store, backend client and query
// cache. The browser only holds the workspace id in a signed cookie.
package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/session"
)

type Workspace struct {
	ID      uuid.UUID
	Session *session.Store
	API     *apiclient.Client
	Query   *query.Client
	Poller  *query.Poller

	lastSeen    atomic.Int64
	focusWindow time.Duration
	restoreMu   sync.Mutex
	restored    bool
	cancel      context.CancelFunc
	logger      *zap.Logger
}

func newWorkspace(id uuid.UUID, opts Options) *Workspace {
	log := opts.Logger.With(zap.String("workspace", id.String()))

	store := session.NewStore(opts.Storage.Scope(id), log)
	api := apiclient.New(opts.API, store, log)
	store.Attach(api)

	q := query.NewClient(query.Options{Retry: opts.Retry, Logger: log})

	ws := &Workspace{
		ID:          id,
		Session:     store,
		API:         api,
		Query:       q,
		focusWindow: opts.FocusWindow,
		logger:      log,
	}
	ws.Poller = query.NewPoller(q, opts.PollInterval, ws.Focused)
	ws.Touch()

	// fires on logout, on a 401 and when a login replaces a live session; cached data and
	// watched queries belong to the previous identity
	store.OnInvalidate(func() {
		ws.Poller.Reset()
		q.Clear()
	})

	ctx, cancel := context.WithCancel(context.Background())
	ws.cancel = cancel
	go ws.Poller.Run(ctx)
	return ws
}

// Touch records browser activity.
func (w *Workspace) Touch() {
	w.lastSeen.Store(time.Now().UnixNano())
}

// Focused reports whether the browser was active within the focus window. Background polling only
// runs while it is.
func (w *Workspace) Focused() bool {
	if w.focusWindow <= 0 {
		return true
	}
	return time.Since(time.Unix(0, w.lastSeen.Load())) < w.focusWindow
}

// restore loads the persisted session until one attempt succeeds. A failed attempt, such as an
// unreachable backend, is retried on the next request.
func (w *Workspace) restore(ctx context.Context) {
	w.restoreMu.Lock()
	defer w.restoreMu.Unlock()
	if w.restored {
		return
	}
	if w.Session.State() == session.StateAuthenticated {
		w.restored = true
		return
	}
	if err := w.Session.Restore(ctx); err != nil {
		w.logger.Warn("Failed to restore session", zap.Error(err))
		return
	}
	w.restored = true
}

// Close stops background polling and drops cached data. The persisted session is kept.
func (w *Workspace) Close() {
	w.cancel()
	w.Query.Clear()
}
