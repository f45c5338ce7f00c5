package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type seen struct {
	method, path, query, body string
	header                    http.Header
}

func setup(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*gin.Engine, *seen) {
	t.Helper()
	got := &seen{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*got = seen{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(b), header: r.Header.Clone()}
		handler(w, r)
	}))
	t.Cleanup(backend.Close)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(Config{BackendURL: backend.URL + "/"}, zap.NewNop()).Register(r)
	return r, got
}

func jsonReply(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestForwardsPatchWithBodyAndAuth(t *testing.T) {
	r, got := setup(t, jsonReply(http.StatusOK, `{"success":true,"data":{"id":"123","status":"processed"}}`))

	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/123/status?notify=true", strings.NewReader(`{"status":"processed"}`))
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("Cookie", "session=secret")
	req.Header.Set("X-Custom", "dropped")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"123","status":"processed"}}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/api/transactions/123/status", got.path)
	assert.Equal(t, "notify=true", got.query)
	assert.Equal(t, `{"status":"processed"}`, got.body)
	assert.Equal(t, "Bearer tok", got.header.Get("Authorization"))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Empty(t, got.header.Get("Cookie"))
	assert.Empty(t, got.header.Get("X-Custom"))
}

func TestRelaysErrorStatusVerbatim(t *testing.T) {
	r, _ := setup(t, jsonReply(http.StatusUnprocessableEntity, `{"success":false,"error":"Invalid status transition"}`))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions/9", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid status transition"}`, w.Body.String())
}

func TestNonJSONPassthrough(t *testing.T) {
	r, _ := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "101 091000019 1234567890")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nacha/files/7/download", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "101 091000019 1234567890", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestInvalidRequestBodyIsInternalError(t *testing.T) {
	called := false
	r, _ := setup(t, func(w http.ResponseWriter, _ *http.Request) { called = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
	assert.False(t, called)
}

func TestMalformedBackendJSONIsInternalError(t *testing.T) {
	r, _ := setup(t, jsonReply(http.StatusOK, `{"success":tru`))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
}

func TestEmptyBodyDelete(t *testing.T) {
	r, got := setup(t, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/holidays/h1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Empty(t, got.body)
}

func TestBackendDownIsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(Config{BackendURL: "http://127.0.0.1:1"}, zap.NewNop()).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
}

func TestOversizedBodiesAreInternalErrors(t *testing.T) {
	reply := strings.Repeat("x", 16)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, reply)
	}))
	defer backend.Close()

	gin.SetMode(gin.TestMode)
	newRouter := func(limit int64) *gin.Engine {
		r := gin.New()
		New(Config{BackendURL: backend.URL, MaxBody: limit}, zap.NewNop()).Register(r)
		return r
	}

	t.Run("response at the limit is relayed whole", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(16).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nacha/files/1/download", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, reply, w.Body.String())
	})

	t.Run("response over the limit is not truncated", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(15).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nacha/files/1/download", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
	})

	t.Run("request over the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{"amount":"12.50"}`))
		newRouter(8).ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
