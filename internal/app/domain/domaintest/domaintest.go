// Package domaintest wires a workspace against a fake backend for handler tests.
package domaintest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

// Backend starts a fake ACH backend and returns a workspace whose client talks to it.
func Backend(t *testing.T, handler http.HandlerFunc) *workspace.Workspace {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	reg := workspace.NewRegistry(workspace.Options{
		API: apiclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second},
		Retry: query.RetryPolicy{
			ReadTries:  4,
			WriteTries: 3,
			Initial:    time.Millisecond,
			Max:        2 * time.Millisecond,
		},
		IdleTTL: time.Hour,
	})
	t.Cleanup(reg.Close)
	return reg.Get(t.Context(), uuid.New())
}

// Router returns a gin engine whose requests all run in ws. register mounts the handlers under
// test.
func Router(ws *workspace.Workspace, register func(r gin.IRouter, base *domain.BaseHandler)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		workspace.Attach(c, ws)
		c.Next()
	})
	register(r, domain.NewBaseHandler(zap.NewNop(), "/login"))
	return r
}

// WriteJSON answers a fake backend request with v.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode parses a view response envelope.
func Decode[T any](t *testing.T, body []byte) models.Envelope[T] {
	t.Helper()
	var env models.Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v: %s", err, body)
	}
	return env
}
