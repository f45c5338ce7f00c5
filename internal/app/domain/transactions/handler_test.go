package transactions

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/domaintest"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

func mount(r gin.IRouter, base *domain.BaseHandler) {
	h := NewTransactionHandlers(base)
	r.GET("/views/transactions", h.List)
	r.GET("/views/transactions/stats", h.Stats)
	r.GET("/views/transactions/:id", h.Get)
	r.PATCH("/views/transactions/:id/status", h.UpdateStatus)
	r.POST("/views/transactions/bulk-status", h.BulkUpdateStatus)
}

func TestListHandlerFormatsAmounts(t *testing.T) {
	var calls int32
	ws := domaintest.Backend(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/api/transactions", r.URL.Path)
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		domaintest.WriteJSON(w, http.StatusOK, models.OKPage(models.Page[models.Transaction]{
			Items:      []models.Transaction{{ID: "1", Amount: decimal.RequireFromString("1234.5"), Status: models.StatusPending}},
			Pagination: &models.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1},
		}))
	})
	router := domaintest.Router(ws, mount)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/transactions?status=pending", nil))
		require.Equal(t, http.StatusOK, w.Code)

		env := domaintest.Decode[[]Row](t, w.Body.Bytes())
		require.True(t, env.Success)
		require.Len(t, env.Data, 1)
		assert.Equal(t, "$1,234.50", env.Data[0].AmountDisplay)
		assert.Equal(t, 1, env.Pagination.Total)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "second view is served from cache")
}

func TestUpdateStatusHandler(t *testing.T) {
	ws := domaintest.Backend(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/transactions/123/status", r.URL.Path)
		assert.JSONEq(t, `{"status":"cancelled"}`, string(body))
		domaintest.WriteJSON(w, http.StatusOK, models.OK(models.Transaction{ID: "123", Status: models.StatusCancelled}))
	})
	router := domaintest.Router(ws, mount)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/views/transactions/123/status", strings.NewReader(`{"status":"cancelled"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := domaintest.Decode[Row](t, w.Body.Bytes())
	assert.Equal(t, models.StatusCancelled, env.Data.Status)
}

func TestBulkStatusHandlerRejectsEmptyBatch(t *testing.T) {
	ws := domaintest.Backend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called, got %s %s", r.Method, r.URL.Path)
	})
	router := domaintest.Router(ws, mount)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/views/transactions/bulk-status", strings.NewReader(`{"ids":[],"status":"processed"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := domaintest.Decode[any](t, w.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, models.ErrEmptyBatch.Error(), env.Error)
}

func TestHandlerUnauthorizedRedirectsToLogin(t *testing.T) {
	ws := domaintest.Backend(t, func(w http.ResponseWriter, r *http.Request) {
		domaintest.WriteJSON(w, http.StatusUnauthorized, models.Fail("Invalid token"))
	})
	require.NoError(t, ws.Session.SetSession(context.Background(), &models.User{ID: "u1"}, "abc"))
	router := domaintest.Router(ws, mount)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/transactions/1", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
	assert.False(t, ws.Session.GetSession().IsAuthenticated)
}

func TestStatsHandlerRegistersPolling(t *testing.T) {
	var calls int32
	ws := domaintest.Backend(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		domaintest.WriteJSON(w, http.StatusOK, models.OK(models.TransactionStats{TotalTransactions: 3, TotalAmount: decimal.NewFromInt(42)}))
	})
	router := domaintest.Router(ws, mount)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/transactions/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := domaintest.Decode[StatsView](t, w.Body.Bytes())
	assert.Equal(t, "$42.00", env.Data.TotalAmountDisplay)

	assert.Equal(t, 1, ws.Poller.Tick(context.Background()))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}
