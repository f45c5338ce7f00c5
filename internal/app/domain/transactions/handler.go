package transactions

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

// Row is a transaction as listed on the dashboard.
type Row struct {
	models.Transaction
	AmountDisplay string `json:"amountDisplay"`
}

func toRow(t models.Transaction) Row {
	return Row{Transaction: t, AmountDisplay: models.FormatAmount(t.Amount)}
}

type StatsView struct {
	models.TransactionStats
	TotalAmountDisplay string `json:"totalAmountDisplay"`
}

type BulkStatusRequest struct {
	IDs    []string                 `json:"ids"`
	Status models.TransactionStatus `json:"status"`
	Reason string                   `json:"reason,omitempty"`
}

type TransactionHandlers struct {
	*domain.BaseHandler
}

func NewTransactionHandlers(base *domain.BaseHandler) *TransactionHandlers {
	return &TransactionHandlers{BaseHandler: base}
}

func (h *TransactionHandlers) service(c *gin.Context) (*Service, bool) {
	ws, ok := h.Workspace(c)
	if !ok {
		return nil, false
	}
	return NewService(ws.API, ws.Query), true
}

func filtersFrom(c *gin.Context) models.TransactionFilters {
	return models.TransactionFilters{
		Status:         models.TransactionStatus(c.Query("status")),
		OrganizationID: c.Query("organizationId"),
		EffectiveDate:  c.Query("effectiveDate"),
		StartDate:      c.Query("startDate"),
		EndDate:        c.Query("endDate"),
		Search:         c.Query("search"),
		Page:           domain.IntQuery(c, "page"),
		Limit:          domain.IntQuery(c, "limit"),
	}
}

func (h *TransactionHandlers) List(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	page, err := svc.List(c.Request.Context(), filtersFrom(c))
	if err != nil {
		h.Fail(c, err)
		return
	}
	rows := make([]Row, len(page.Items))
	for i, t := range page.Items {
		rows[i] = toRow(t)
	}
	c.JSON(http.StatusOK, models.OKPage(models.Page[Row]{Items: rows, Pagination: page.Pagination}))
}

func (h *TransactionHandlers) Get(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	t, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(toRow(t)))
}

// Stats also registers the stats query for background polling while the browser stays active.
func (h *TransactionHandlers) Stats(c *gin.Context) {
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
	c.JSON(http.StatusOK, models.OK(StatsView{
		TransactionStats:   stats,
		TotalAmountDisplay: models.FormatAmount(stats.TotalAmount),
	}))
}

func (h *TransactionHandlers) Create(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.CreateTransactionRequest
	if !h.Bind(c, &req) {
		return
	}
	t, err := svc.Create(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Logger.Info("Transaction created", zap.String("transaction_id", t.ID))
	c.JSON(http.StatusCreated, models.OK(toRow(t)))
}

func (h *TransactionHandlers) UpdateStatus(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var upd models.StatusUpdate
	if !h.Bind(c, &upd) {
		return
	}
	t, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(toRow(t)))
}

func (h *TransactionHandlers) BulkUpdateStatus(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req BulkStatusRequest
	if !h.Bind(c, &req) {
		return
	}
	updated, err := svc.BulkUpdateStatus(c.Request.Context(), req.IDs,
		models.StatusUpdate{Status: req.Status, Reason: req.Reason})
	if err != nil {
		h.Fail(c, err)
		return
	}
	rows := make([]Row, len(updated))
	for i, t := range updated {
		rows[i] = toRow(t)
	}
	h.Logger.Info("Bulk status update", zap.Int("count", len(rows)), zap.String("status", string(req.Status)))
	c.JSON(http.StatusOK, models.OK(rows))
}

func (h *TransactionHandlers) ListEntries(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	page, err := svc.Entries(c.Request.Context(), filtersFrom(c))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKPage(page))
}

func (h *TransactionHandlers) GetEntry(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	e, err := svc.Entry(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(e))
}

func (h *TransactionHandlers) UpdateEntryStatus(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var upd models.StatusUpdate
	if !h.Bind(c, &upd) {
		return
	}
	e, err := svc.UpdateEntryStatus(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(e))
}

func (h *TransactionHandlers) ListGroups(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	page, err := svc.Groups(c.Request.Context(), filtersFrom(c))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKPage(page))
}

func (h *TransactionHandlers) GetGroup(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	g, err := svc.Group(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(g))
}

func (h *TransactionHandlers) CreateGroup(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req models.CreateTransactionRequest
	if !h.Bind(c, &req) {
		return
	}
	g, err := svc.CreateGroup(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK(g))
}
