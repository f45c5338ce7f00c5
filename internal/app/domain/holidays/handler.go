package holidays

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

type HolidayHandlers struct {
	*domain.BaseHandler
	now func() time.Time
}

func NewHolidayHandlers(base *domain.BaseHandler) *HolidayHandlers {
	return &HolidayHandlers{BaseHandler: base, now: time.Now}
}

func (h *HolidayHandlers) service(c *gin.Context) (*Service, bool) {
	ws, ok := h.Workspace(c)
	if !ok {
		return nil, false
	}
	return NewService(ws.API, ws.Query), true
}

// year reads ?year= or the :year path parameter, defaulting to the current year.
func (h *HolidayHandlers) year(c *gin.Context) (int, bool) {
	raw := c.Param("year")
	if raw == "" {
		raw = c.Query("year")
	}
	if raw == "" {
		return h.now().Year(), true
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Invalid year"))
		return 0, false
	}
	return y, true
}

func (h *HolidayHandlers) List(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	year, ok := h.year(c)
	if !ok {
		return
	}
	list, err := svc.List(c.Request.Context(), year)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(list))
}

func (h *HolidayHandlers) Create(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.HolidayRequest
	if !h.Bind(c, &req) {
		return
	}
	created, err := svc.Create(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK(created))
}

func (h *HolidayHandlers) Update(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.HolidayRequest
	if !h.Bind(c, &req) {
		return
	}
	updated, err := svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(updated))
}

func (h *HolidayHandlers) Delete(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Envelope[any]{Success: true, Message: "Holiday deleted"})
}

func (h *HolidayHandlers) Generate(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	year, ok := h.year(c)
	if !ok {
		return
	}
	list, err := svc.Generate(c.Request.Context(), year)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(list))
}

func (h *HolidayHandlers) CheckBusinessDay(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	res, err := svc.CheckBusinessDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(res))
}

func (h *HolidayHandlers) NextBusinessDay(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	res, err := svc.NextBusinessDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(res))
}
