package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
)

// DefaultProtectedRoutes are the dashboard screens sent to the login page.
var DefaultProtectedRoutes = []string{"/dashboard", "/transactions", "/organizations", "/nacha", "/holidays", "/settings"}

// Guard decides which page navigations are sent to the login page. It looks at the path only;
// whether the caller is signed in is for the session store to decide.
type Guard struct {
	LoginPath string
	Protected []string
}

func NewGuard(loginPath string, protected []string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	if protected == nil {
		protected = DefaultProtectedRoutes
	}
	return &Guard{LoginPath: loginPath, Protected: protected}
}

// Redirect returns the login path when path must be redirected.
func (g *Guard) Redirect(path string) (string, bool) {
	if path == "/" {
		return g.LoginPath, true
	}
	for _, p := range g.Protected {
		if p != "" && strings.HasPrefix(path, p) {
			return g.LoginPath, true
		}
	}
	return "", false
}

// RouteGuard applies g to every request.
func RouteGuard(g *Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if target, ok := g.Redirect(c.Request.URL.Path); ok {
			handleAuthRedirect(c, target)
			return
		}
		c.Next()
	}
}

// RequireSession answers 401 with a login redirect when the workspace is not signed in.
func RequireSession(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := workspace.FromContext(c)
		if ws != nil && ws.Session.GetSession().IsAuthenticated {
			c.Next()
			return
		}
		c.Header("HX-Redirect", loginPath)
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.Fail("Authentication required"))
	}
}
