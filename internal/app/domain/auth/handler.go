// Package auth serves login, registration, logout and the session state of the current
// workspace.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/session"
)

// UserKey caches the signed-in user's profile.
var UserKey = query.Key{"auth", "detail"}

// View is the session state as the dashboard sees it.
type View struct {
	session.Session
	State    string `json:"state"`
	Redirect string `json:"redirect,omitempty"`
}

type AuthHandlers struct {
	*domain.BaseHandler
	HomePath string
}

func NewAuthHandlers(base *domain.BaseHandler, homePath string) *AuthHandlers {
	if homePath == "" {
		homePath = "/dashboard"
	}
	return &AuthHandlers{BaseHandler: base, HomePath: homePath}
}

func (h *AuthHandlers) view(ws *workspace.Workspace) View {
	v := View{Session: ws.Session.GetSession(), State: ws.Session.State().String()}
	if v.IsAuthenticated {
		v.Redirect = h.HomePath
	}
	return v
}

// authFailed answers a rejected login or registration with the backend's own message.
func (h *AuthHandlers) authFailed(c *gin.Context, op string, err error) {
	status := apiclient.StatusCode(err)
	switch {
	case status >= 400 && status < 500:
	case errors.Is(err, models.ErrUnauthenticated), status > 0 && status < 400:
		status = http.StatusUnauthorized
	case status == 0:
		status = http.StatusBadGateway
	}
	h.Logger.Warn("Authentication failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err))
	c.AbortWithStatusJSON(status, models.Fail(apiclient.ErrorMessage(err)))
}

func (h *AuthHandlers) established(c *gin.Context, ws *workspace.Workspace, status int) {
	v := h.view(ws)
	if v.User != nil {
		ws.Query.SetData(UserKey, *v.User)
	}
	c.Header("HX-Redirect", h.HomePath)
	c.JSON(status, models.OK(v))
}

func (h *AuthHandlers) Login(c *gin.Context) {
	ws, ok := h.Workspace(c)
	if !ok {
		return
	}
	var req models.LoginRequest
	if !h.Bind(c, &req) {
		return
	}
	h.Logger.Info("Login attempt",
		zap.String("remote_addr", c.ClientIP()),
		zap.String("workspace", ws.ID.String()))

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Email and password are required"))
		return
	}
	if err := ws.Session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.authFailed(c, "login", err)
		return
	}
	h.established(c, ws, http.StatusOK)
}

func (h *AuthHandlers) Register(c *gin.Context) {
	ws, ok := h.Workspace(c)
	if !ok {
		return
	}
	var req models.RegisterRequest
	if !h.Bind(c, &req) {
		return
	}
	h.Logger.Info("Registration attempt",
		zap.String("remote_addr", c.ClientIP()),
		zap.String("workspace", ws.ID.String()))

	if strings.TrimSpace(req.Email) == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("All required fields must be filled"))
		return
	}
	if err := ws.Session.Register(c.Request.Context(), req); err != nil {
		h.authFailed(c, "register", err)
		return
	}
	h.established(c, ws, http.StatusCreated)
}

// Logout ends the session locally. The backend is not told.
func (h *AuthHandlers) Logout(c *gin.Context) {
	ws, ok := h.Workspace(c)
	if !ok {
		return
	}
	if err := ws.Session.Logout(c.Request.Context()); err != nil {
		h.Logger.Warn("Logout did not clear persisted session", zap.Error(err))
	}
	c.Header("HX-Redirect", h.LoginPath)
	c.JSON(http.StatusOK, models.OK(h.view(ws)))
}

// Session reports the session state. When signed in the profile is refreshed through the cache,
// so a role change on the backend shows up within the auth staleness window.
func (h *AuthHandlers) Session(c *gin.Context) {
	ws, ok := h.Workspace(c)
	if !ok {
		return
	}
	if !ws.Session.GetSession().IsAuthenticated {
		c.JSON(http.StatusOK, models.OK(h.view(ws)))
		return
	}

	user, err := query.Fetch(c.Request.Context(), ws.Query, query.Query[models.User]{
		Key: UserKey,
		Fn:  profileFn(ws, h.Logger),
	})
	if err != nil {
		h.Fail(c, err)
		return
	}
	v := h.view(ws)
	v.User = &user
	c.JSON(http.StatusOK, models.OK(v))
}

// LoginPage answers the login route with the session state; an authenticated caller is pointed
// at the dashboard.
func (h *AuthHandlers) LoginPage(c *gin.Context) {
	ws, ok := h.Workspace(c)
	if !ok {
		return
	}
	v := h.view(ws)
	if v.IsAuthenticated {
		c.Header("HX-Redirect", v.Redirect)
	}
	c.JSON(http.StatusOK, models.OK(v))
}
