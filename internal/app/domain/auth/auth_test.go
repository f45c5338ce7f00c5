package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/domaintest"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

var operator = models.User{ID: "u-1", Email: "ops@bank.test", Role: models.RoleOperator, IsActive: true}

type fakeBackend struct {
	profiles atomic.Int32
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/login":
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct horse" {
			domaintest.WriteJSON(w, http.StatusUnauthorized, models.Fail("Invalid email or password"))
			return
		}
		domaintest.WriteJSON(w, http.StatusOK, models.OK(models.AuthResult{User: operator, Token: "tok-1"}))
	case "POST /api/auth/register":
		domaintest.WriteJSON(w, http.StatusConflict, models.Fail("Email already registered"))
	case "GET /api/auth/profile":
		b.profiles.Add(1)
		u := operator
		u.Role = models.RoleAdmin
		domaintest.WriteJSON(w, http.StatusOK, models.OK(u))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setup(t *testing.T) (*gin.Engine, *workspace.Workspace, *fakeBackend) {
	backend := &fakeBackend{}
	ws := domaintest.Backend(t, backend.ServeHTTP)
	router := domaintest.Router(ws, func(r gin.IRouter, base *domain.BaseHandler) {
		h := NewAuthHandlers(base, "")
		r.POST("/auth/login", h.Login)
		r.POST("/auth/register", h.Register)
		r.POST("/auth/logout", h.Logout)
		r.GET("/auth/session", h.Session)
		r.GET("/login", h.LoginPage)
	})
	return router, ws, backend
}

func post(router *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestLogin(t *testing.T) {
	router, ws, _ := setup(t)

	w := post(router, "/auth/login", `{"email":"ops@bank.test","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("HX-Redirect"))

	env := domaintest.Decode[View](t, w.Body.Bytes())
	assert.True(t, env.Data.IsAuthenticated)
	assert.Equal(t, "authenticated", env.Data.State)
	assert.NotContains(t, w.Body.String(), "tok-1")

	cached, ok := query.GetQueryData[models.User](ws.Query, UserKey)
	require.True(t, ok)
	assert.Equal(t, "u-1", cached.ID)
	assert.Equal(t, "tok-1", ws.Session.GetSession().Token)
}

func TestLoginFailureRelaysBackendMessage(t *testing.T) {
	router, ws, _ := setup(t)

	w := post(router, "/auth/login", `{"email":"ops@bank.test","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", domaintest.Decode[any](t, w.Body.Bytes()).Error)
	assert.False(t, ws.Session.GetSession().IsAuthenticated)
}

func TestLoginRequiresCredentials(t *testing.T) {
	router, _, _ := setup(t)
	w := post(router, "/auth/login", `{"email":"ops@bank.test"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = post(router, "/auth/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterConflict(t *testing.T) {
	router, _, _ := setup(t)
	w := post(router, "/auth/register", `{"email":"a@b.test","password":"pw","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", domaintest.Decode[any](t, w.Body.Bytes()).Error)
}

func TestLogoutClearsCache(t *testing.T) {
	router, ws, _ := setup(t)
	require.Equal(t, http.StatusOK, post(router, "/auth/login", `{"email":"ops@bank.test","password":"correct horse"}`).Code)
	ws.Query.SetData(query.Key{"transactions", "stats"}, models.TransactionStats{TotalTransactions: 3})

	w := post(router, "/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
	assert.False(t, domaintest.Decode[View](t, w.Body.Bytes()).Data.IsAuthenticated)
	assert.Zero(t, ws.Query.Len())
}

func TestSessionRefreshesProfile(t *testing.T) {
	router, ws, backend := setup(t)

	w := get(router, "/auth/session")
	require.Equal(t, http.StatusOK, w.Code)
	env := domaintest.Decode[View](t, w.Body.Bytes())
	assert.False(t, env.Data.IsAuthenticated)
	assert.Equal(t, "unauthenticated", env.Data.State)
	assert.Zero(t, backend.profiles.Load())

	require.Equal(t, http.StatusOK, post(router, "/auth/login", `{"email":"ops@bank.test","password":"correct horse"}`).Code)
	ws.Query.Remove(UserKey)

	for range 2 {
		w = get(router, "/auth/session")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleAdmin, domaintest.Decode[View](t, w.Body.Bytes()).Data.User.Role)
	}
	assert.EqualValues(t, 1, backend.profiles.Load())
	assert.True(t, ws.Session.HasRole(models.RoleAdmin))
}

func TestLoginPage(t *testing.T) {
	router, _, _ := setup(t)

	w := get(router, "/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("HX-Redirect"))

	require.Equal(t, http.StatusOK, post(router, "/auth/login", `{"email":"ops@bank.test","password":"correct horse"}`).Code)
	w = get(router, "/login")
	assert.Equal(t, "/dashboard", w.Header().Get("HX-Redirect"))
	assert.Equal(t, "/dashboard", domaintest.Decode[View](t, w.Body.Bytes()).Data.Redirect)
}
