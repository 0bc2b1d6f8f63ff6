package httpapi

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chero-kobuleti/menu/internal/auth"
	"github.com/chero-kobuleti/menu/pkg/types"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "menu_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			s.log.Error("request", fields...)
		default:
			s.log.Debug("request", fields...)
		}
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(auth.CookieName)
		if err := s.auth.Verify(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// ipLimiter keeps one token bucket per client address.
type ipLimiter struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	byIP  map[string]*rate.Limiter
}

// maxTrackedIPs bounds the limiter map; it is reset when exceeded.
const maxTrackedIPs = 4096

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{limit: limit, burst: burst, byIP: make(map[string]*rate.Limiter)}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.byIP[ip]
	if !ok {
		if len(l.byIP) >= maxTrackedIPs {
			clear(l.byIP)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byIP[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// fail writes err as a JSON error response.
func (s *Server) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	var inUse *types.CategoryInUseError
	switch {
	case errors.As(err, &inUse):
		return http.StatusBadRequest, inUse.Error()
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrConfirmationRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrNotFound):
		// Missing data files carry their absolute path.
		if errors.Is(err, fs.ErrNotExist) {
			return http.StatusNotFound, "not found"
		}
		return http.StatusNotFound, err.Error()
	case errors.Is(err, types.ErrLockTimeout):
		return http.StatusServiceUnavailable, "busy, try again"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
