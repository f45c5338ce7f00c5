package nacha

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

// FileRow is a NACHA file as listed on the dashboard.
type FileRow struct {
	models.NachaFile
	TotalDebitDisplay  string `json:"totalDebitDisplay"`
	TotalCreditDisplay string `json:"totalCreditDisplay"`
}

func toRow(f models.NachaFile) FileRow {
	return FileRow{
		NachaFile:          f,
		TotalDebitDisplay:  models.FormatAmount(f.TotalDebit),
		TotalCreditDisplay: models.FormatAmount(f.TotalCredit),
	}
}

type NachaHandlers struct {
	*domain.BaseHandler
}

func NewNachaHandlers(base *domain.BaseHandler) *NachaHandlers {
	return &NachaHandlers{BaseHandler: base}
}

func (h *NachaHandlers) service(c *gin.Context) (*Service, bool) {
	ws, ok := h.Workspace(c)
	if !ok {
		return nil, false
	}
	return NewService(ws.API, ws.Query), true
}

func (h *NachaHandlers) List(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	page, err := svc.List(c.Request.Context(), models.NachaFilters{
		Status:        models.NachaFileStatus(c.Query("status")),
		EffectiveDate: c.Query("effectiveDate"),
		Page:          domain.IntQuery(c, "page"),
		Limit:         domain.IntQuery(c, "limit"),
	})
	if err != nil {
		h.Fail(c, err)
		return
	}
	rows := make([]FileRow, len(page.Items))
	for i, f := range page.Items {
		rows[i] = toRow(f)
	}
	c.JSON(http.StatusOK, models.OKPage(models.Page[FileRow]{Items: rows, Pagination: page.Pagination}))
}

func (h *NachaHandlers) Get(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	f, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(toRow(f)))
}

func (h *NachaHandlers) Validate(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	v, err := svc.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(v))
}

func (h *NachaHandlers) Stats(c *gin.Context) {
	ws, ok := h.Workspace(c)
	if !ok {
		return
	}
	svc := NewService(ws.API, ws.Query)
	query.Watch(ws.Poller, svc.StatsQuery())

	stats, err := svc.Stats(c.Request.Context())
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(stats))
}

func (h *NachaHandlers) Download(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	dl, err := svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Data(http.StatusOK, dl.ContentType, dl.Content)
}

func (h *NachaHandlers) Generate(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.GenerateNachaRequest
	if !h.Bind(c, &req) {
		return
	}
	f, err := svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Logger.Info("NACHA file generated",
		zap.String("file_id", f.ID),
		zap.String("effective_date", f.EffectiveDate),
		zap.Int("transactions", f.TransactionCount))
	c.JSON(http.StatusCreated, models.OK(toRow(f)))
}

func (h *NachaHandlers) Transmit(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	f, err := svc.Transmit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Logger.Info("NACHA file transmitted", zap.String("file_id", f.ID))
	c.JSON(http.StatusOK, models.OK(toRow(f)))
}
