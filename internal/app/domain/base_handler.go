package domain

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
)

const sessionExpiredMessage = "Your session has expired. Please sign in again."

type BaseHandler struct {
	Logger    *zap.Logger
	LoginPath string
}

func NewBaseHandler(logger *zap.Logger, loginPath string) *BaseHandler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &BaseHandler{Logger: logger, LoginPath: loginPath}
}

// Workspace returns the request's workspace or answers 500 when the workspace middleware did not
// run.
func (h *BaseHandler) Workspace(c *gin.Context) (*workspace.Workspace, bool) {
	ws := workspace.FromContext(c)
	if ws == nil {
		h.Logger.Error("Workspace missing from request context", zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Fail("Internal server error"))
		return nil, false
	}
	return ws, true
}

// Bind decodes a JSON body into v, answering 400 on failure.
func (h *BaseHandler) Bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.Logger.Debug("Invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Invalid request body"))
		return false
	}
	return true
}

// Redirect sends the browser to target; HTMX requests get HX-Redirect instead of a 3xx.
func Redirect(c *gin.Context, status int, target string) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", target)
		c.AbortWithStatusJSON(status, models.Fail(sessionExpiredMessage))
		return
	}
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}

// Fail converts err into a short user-facing envelope. A 401 from the backend ends the session,
// so the browser is sent to the login page.
func (h *BaseHandler) Fail(c *gin.Context, err error) {
	status := apiclient.StatusCode(err)
	if status > 0 && status < 400 {
		// success:false inside a 2xx
		status = http.StatusBadRequest
	}
	switch {
	case status == http.StatusUnauthorized || errors.Is(err, models.ErrUnauthenticated):
		c.Header("HX-Redirect", h.LoginPath)
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.Fail(sessionExpiredMessage))
		return
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrEmptyBatch):
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	case status >= 400 && status < 500:
		c.AbortWithStatusJSON(status, models.Fail(apiclient.ErrorMessage(err)))
		return
	case status == 0:
		status = http.StatusBadGateway
	}

	h.Logger.Warn("Request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err))
	c.AbortWithStatusJSON(status, models.Fail(apiclient.ErrorMessage(err)))
}

// IntQuery reads an optional positive integer query parameter.
func IntQuery(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
