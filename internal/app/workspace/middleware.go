package workspace

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cookieKey  = "workspace_id"
	issuedKey  = "issued_at"
	contextKey = "workspace"
)

var now = time.Now

// Middleware resolves the workspace of the request from the session cookie, issuing a new id when
// the cookie is missing or unreadable. The cookie is re-issued once half the idle TTL has passed
// so its MaxAge slides with activity. It must run after sessions.Sessions.
func Middleware(reg *Registry, logger *zap.Logger) gin.HandlerFunc {
	refreshAfter := reg.opts.IdleTTL / 2
	return func(c *gin.Context) {
		s := sessions.Default(c)
		t := now()

		id, err := uuid.Parse(asString(s.Get(cookieKey)))
		issued := err != nil
		if issued {
			id = uuid.New()
			s.Set(cookieKey, id.String())
		}
		if issued || t.Sub(time.Unix(asInt64(s.Get(issuedKey)), 0)) >= refreshAfter {
			s.Set(issuedKey, t.Unix())
			if err := s.Save(); err != nil {
				logger.Warn("Failed to save session cookie", zap.Error(err))
			}
		}

		ws := reg.Get(c.Request.Context(), id)
		ws.Touch()
		Attach(c, ws)
		c.Next()
	}
}

// Attach makes ws the workspace of the request.
func Attach(c *gin.Context, ws *Workspace) {
	c.Set(contextKey, ws)
}

// FromContext returns the workspace set by Middleware, or nil.
func FromContext(c *gin.Context) *Workspace {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	ws, _ := v.(*Workspace)
	return ws
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	n, _ := v.(int64)
	return n
}
