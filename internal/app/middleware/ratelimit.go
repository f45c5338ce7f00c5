package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

// LoginLimiter throttles attempts per client IP. Idle limiters expire after ttl.
type LoginLimiter struct {
	limiters *cache.Cache
	every    time.Duration
	burst    int
}

// NewLoginLimiter allows burst attempts per IP, refilled one every every.
func NewLoginLimiter(every time.Duration, burst int, ttl time.Duration) *LoginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &LoginLimiter{
		limiters: cache.New(ttl, 2*ttl),
		every:    every,
		burst:    burst,
	}
}

func (l *LoginLimiter) limiter(ip string) *rate.Limiter {
	if v, ok := l.limiters.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Every(l.every), l.burst)
	if err := l.limiters.Add(ip, lim, cache.DefaultExpiration); err != nil {
		// lost the race to another request from the same IP
		if v, ok := l.limiters.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Allow reports whether ip may attempt another login now.
func (l *LoginLimiter) Allow(ip string) bool {
	return l.limiter(ip).Allow()
}

func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter(l.every))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.Fail("Too many login attempts. Please try again later."))
			return
		}
		c.Next()
	}
}

func retryAfter(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
