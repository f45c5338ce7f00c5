package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/domain"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/auth"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/holidays"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/nacha"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/organizations"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/settings"
	"github.com/FACorreiaa/ach-dashboard/internal/app/domain/transactions"
	"github.com/FACorreiaa/ach-dashboard/internal/app/middleware"
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/proxy"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
)

// Deps are the long-lived components the routes are built on.
type Deps struct {
	Registry  *workspace.Registry
	Proxy     *proxy.Proxy
	Limiter   *middleware.LoginLimiter
	LoginPath string
}

type AppHandlers struct {
	Base          *domain.BaseHandler
	Auth          *auth.AuthHandlers
	Transactions  *transactions.TransactionHandlers
	Nacha         *nacha.NachaHandlers
	Organizations *organizations.OrganizationHandlers
	Holidays      *holidays.HolidayHandlers
	Settings      *settings.SettingsHandlers
}

func Setup(r *gin.Engine, deps Deps, log *zap.Logger) {
	setupRouter(r, deps, setupHandlers(deps, log), log)
}

func setupHandlers(deps Deps, log *zap.Logger) *AppHandlers {
	base := domain.NewBaseHandler(log, deps.LoginPath)
	return &AppHandlers{
		Base:          base,
		Auth:          auth.NewAuthHandlers(base, "/dashboard"),
		Transactions:  transactions.NewTransactionHandlers(base),
		Nacha:         nacha.NewNachaHandlers(base),
		Organizations: organizations.NewOrganizationHandlers(base),
		Holidays:      holidays.NewHolidayHandlers(base),
		Settings:      settings.NewSettingsHandlers(base),
	}
}

func setupRouter(r *gin.Engine, deps Deps, h *AppHandlers, log *zap.Logger) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// raw passthrough, no workspace
	if deps.Proxy != nil {
		deps.Proxy.Register(r)
	}

	ws := r.Group("/", workspace.Middleware(deps.Registry, log))
	ws.GET(h.Base.LoginPath, h.Auth.LoginPage)

	throttled := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if deps.Limiter == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{deps.Limiter.Middleware(), handler}
	}
	authGroup := ws.Group("/auth")
	{
		authGroup.POST("/login", throttled(h.Auth.Login)...)
		authGroup.POST("/register", throttled(h.Auth.Register)...)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/session", h.Auth.Session)
	}

	views := ws.Group("/views", middleware.RequireSession(h.Base.LoginPath))
	views.GET("/health", backendHealth(h.Base))

	tx := views.Group("/transactions")
	{
		tx.GET("", h.Transactions.List)
		tx.POST("", h.Transactions.Create)
		tx.GET("/stats", h.Transactions.Stats)
		tx.POST("/bulk-status", h.Transactions.BulkUpdateStatus)
		tx.GET("/entries", h.Transactions.ListEntries)
		tx.GET("/entries/:id", h.Transactions.GetEntry)
		tx.PATCH("/entries/:id/status", h.Transactions.UpdateEntryStatus)
		tx.GET("/groups", h.Transactions.ListGroups)
		tx.POST("/groups", h.Transactions.CreateGroup)
		tx.GET("/groups/:id", h.Transactions.GetGroup)
		tx.GET("/:id", h.Transactions.Get)
		tx.PATCH("/:id/status", h.Transactions.UpdateStatus)
	}

	files := views.Group("/nacha")
	{
		files.GET("/files", h.Nacha.List)
		files.POST("/files/generate", h.Nacha.Generate)
		files.GET("/files/:id", h.Nacha.Get)
		files.GET("/files/:id/validate", h.Nacha.Validate)
		files.GET("/files/:id/download", h.Nacha.Download)
		files.POST("/files/:id/transmit", h.Nacha.Transmit)
		files.GET("/stats", h.Nacha.Stats)
	}

	orgs := views.Group("/organizations")
	{
		orgs.GET("", h.Organizations.List)
		orgs.POST("", h.Organizations.Create)
		orgs.GET("/:id", h.Organizations.Get)
		orgs.PUT("/:id", h.Organizations.Update)
	}

	hol := views.Group("/holidays")
	{
		hol.GET("", h.Holidays.List)
		hol.POST("", h.Holidays.Create)
		hol.POST("/generate/:year", h.Holidays.Generate)
		hol.PUT("/:id", h.Holidays.Update)
		hol.DELETE("/:id", h.Holidays.Delete)
	}
	views.GET("/business-day/check/:date", h.Holidays.CheckBusinessDay)
	views.GET("/business-day/next/:date", h.Holidays.NextBusinessDay)

	cfg := views.Group("/config")
	{
		cfg.GET("/system", h.Settings.ListSystem)
		cfg.PUT("/system/:key", h.Settings.UpdateSystem)
		cfg.GET("/sftp", h.Settings.GetSFTP)
		cfg.PUT("/sftp", h.Settings.UpdateSFTP)
		cfg.POST("/sftp/test", h.Settings.TestSFTP)
		cfg.GET("/ach", h.Settings.GetACH)
		cfg.PUT("/ach", h.Settings.UpdateACH)
	}
}

func backendHealth(base *domain.BaseHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, ok := base.Workspace(c)
		if !ok {
			return
		}
		status, err := ws.API.Health(c.Request.Context())
		if err != nil {
			base.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.OK(status))
	}
}
