package organizations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

type OrganizationHandlers struct {
	*domain.BaseHandler
}

func NewOrganizationHandlers(base *domain.BaseHandler) *OrganizationHandlers {
	return &OrganizationHandlers{BaseHandler: base}
}

func (h *OrganizationHandlers) service(c *gin.Context) (*Service, bool) {
	ws, ok := h.Workspace(c)
	if !ok {
		return nil, false
	}
	return NewService(ws.API, ws.Query), true
}

func filtersFrom(c *gin.Context) models.OrganizationFilters {
	f := models.OrganizationFilters{
		Search: c.Query("search"),
		Page:   domain.IntQuery(c, "page"),
		Limit:  domain.IntQuery(c, "limit"),
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		f.Active = &active
	}
	return f
}

func (h *OrganizationHandlers) List(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	page, err := svc.List(c.Request.Context(), filtersFrom(c))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKPage(page))
}

func (h *OrganizationHandlers) Get(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	org, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(org))
}

func (h *OrganizationHandlers) Create(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.OrganizationRequest
	if !h.Bind(c, &req) {
		return
	}
	org, err := svc.Create(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK(org))
}

func (h *OrganizationHandlers) Update(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.OrganizationRequest
	if !h.Bind(c, &req) {
		return
	}
	org, err := svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(org))
}
