package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

type SettingsHandlers struct {
	*domain.BaseHandler
}

func NewSettingsHandlers(base *domain.BaseHandler) *SettingsHandlers {
	return &SettingsHandlers{BaseHandler: base}
}

func (h *SettingsHandlers) service(c *gin.Context) (*Service, bool) {
	ws, ok := h.Workspace(c)
	if !ok {
		return nil, false
	}
	return NewService(ws.API, ws.Query), true
}

// respond writes res, or the user-facing error when err is set.
func respond[T any](h *SettingsHandlers, c *gin.Context, res T, err error) {
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(res))
}

func (h *SettingsHandlers) ListSystem(c *gin.Context) {
	if svc, ok := h.service(c); ok {
		res, err := svc.System(c.Request.Context())
		respond(h, c, res, err)
	}
}

type systemValue struct {
	Value string `json:"value"`
}

func (h *SettingsHandlers) UpdateSystem(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req systemValue
	if !h.Bind(c, &req) {
		return
	}
	res, err := svc.UpdateSystem(c.Request.Context(), c.Param("key"), req.Value)
	respond(h, c, res, err)
}

func (h *SettingsHandlers) GetSFTP(c *gin.Context) {
	if svc, ok := h.service(c); ok {
		res, err := svc.SFTP(c.Request.Context())
		respond(h, c, res, err)
	}
}

func (h *SettingsHandlers) UpdateSFTP(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.SFTPConfig
	if !h.Bind(c, &req) {
		return
	}
	res, err := svc.UpdateSFTP(c.Request.Context(), req)
	respond(h, c, res, err)
}

func (h *SettingsHandlers) TestSFTP(c *gin.Context) {
	if svc, ok := h.service(c); ok {
		res, err := svc.TestSFTP(c.Request.Context())
		respond(h, c, res, err)
	}
}

func (h *SettingsHandlers) GetACH(c *gin.Context) {
	if svc, ok := h.service(c); ok {
		res, err := svc.ACH(c.Request.Context())
		respond(h, c, res, err)
	}
}

func (h *SettingsHandlers) UpdateACH(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.ACHConfig
	if !h.Bind(c, &req) {
		return
	}
	res, err := svc.UpdateACH(c.Request.Context(), req)
	respond(h, c, res, err)
}
