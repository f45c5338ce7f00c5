package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/middleware"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/proxy"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/session"
)

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "POST /api/auth/login":
			_ = json.NewEncoder(w).Encode(models.OK(models.AuthResult{
				User:  models.User{ID: "u-1", Email: "ops@bank.test", Role: models.RoleOperator},
				Token: "tok-1",
			}))
		case "GET /api/transactions/stats":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"success":false,"error":"Unauthorized"}`)
				return
			}
			_ = json.NewEncoder(w).Encode(models.OK(models.TransactionStats{TotalTransactions: 7}))
		case "GET /api/health":
			_ = json.NewEncoder(w).Encode(models.OK(apiclient.HealthStatus{Status: "ok"}))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"error":"Not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := backend(t)

	reg := workspace.NewRegistry(workspace.Options{
		API:     apiclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second},
		Storage: session.NewMemoryBackend(time.Hour),
		Retry: query.RetryPolicy{
			ReadTries: 4, WriteTries: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond,
		},
		IdleTTL: time.Hour,
	})
	t.Cleanup(reg.Close)

	r := gin.New()
	r.Use(sessions.Sessions("ach_session", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.Use(middleware.RouteGuard(middleware.NewGuard("/login", nil)))
	Setup(r, Deps{
		Registry:  reg,
		Proxy:     proxy.New(proxy.Config{BackendURL: srv.URL}, zap.NewNop()),
		Limiter:   middleware.NewLoginLimiter(time.Second, 5, time.Minute),
		LoginPath: "/login",
	}, zap.NewNop())
	return r
}

type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func (b *browser) do(method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return w
}

func TestViewsRequireSession(t *testing.T) {
	b := &browser{t: t, router: newRouter(t)}

	w := b.do(http.MethodGet, "/views/transactions/stats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
}

func TestLoginThenViews(t *testing.T) {
	b := &browser{t: t, router: newRouter(t)}

	w := b.do(http.MethodPost, "/auth/login", `{"email":"ops@bank.test","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, b.cookies)

	w = b.do(http.MethodGet, "/views/transactions/stats", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"totalTransactions":7`)

	w = b.do(http.MethodGet, "/views/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = b.do(http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = b.do(http.MethodGet, "/views/transactions/stats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWorkspacesAreIsolated(t *testing.T) {
	router := newRouter(t)
	alice := &browser{t: t, router: router}
	bob := &browser{t: t, router: router}

	require.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/auth/login", `{"email":"a@bank.test","password":"pw"}`).Code)
	bob.do(http.MethodGet, "/auth/session", "")

	assert.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/views/transactions/stats", "").Code)
	assert.Equal(t, http.StatusUnauthorized, bob.do(http.MethodGet, "/views/transactions/stats", "").Code)
}

func TestGuardAndProxy(t *testing.T) {
	b := &browser{t: t, router: newRouter(t)}

	w := b.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = b.do(http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, w.Code)

	w = b.do(http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = b.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = b.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
