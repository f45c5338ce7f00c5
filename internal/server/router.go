package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/ach-dashboard/internal/app/middleware"
	"github.com/FACorreiaa/ach-dashboard/internal/app/proxy"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/config"
	"github.com/FACorreiaa/ach-dashboard/internal/routes"
)

// limiterTTL is how long an idle per-IP login limiter is kept.
const limiterTTL = 15 * time.Minute

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(cfg *config.Config, registry *workspace.Registry, logger *zap.Logger) *gin.Engine {
	if cfg.Observability.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
		SkipPaths:  []string{"/healthz"},
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.OTELGinMiddleware(cfg.Observability.ServiceName))
	r.Use(middleware.ObservabilityMiddleware())
	r.Use(middleware.CORSMiddleware(""))
	r.Use(middleware.SecurityMiddleware())

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.IdleTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.Session.CookieName, store))
	r.Use(middleware.RouteGuard(middleware.NewGuard(cfg.Routes.LoginPath, cfg.Routes.ProtectedRoutes)))

	routes.Setup(r, routes.Deps{
		Registry: registry,
		Proxy: proxy.New(proxy.Config{
			BackendURL: cfg.Backend.ProxyURL,
			Timeout:    cfg.Backend.Timeout,
		}, logger),
		Limiter:   middleware.NewLoginLimiter(loginInterval(cfg.Session.LoginRate), cfg.Session.LoginBurst, limiterTTL),
		LoginPath: cfg.Routes.LoginPath,
	}, logger)

	return r
}

// loginInterval turns attempts per second into the refill interval of the limiter.
func loginInterval(perSecond float64) time.Duration {
	if perSecond <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second) / perSecond)
}

// zapContextFunc returns the Zap context function for logging
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.GetString("request_id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if ws := workspace.FromContext(c); ws != nil {
			fields = append(fields, zap.String("workspace", ws.ID.String()))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}
		// request bodies carry credentials and are never logged
		return fields
	}
}
