// Package httpapi serves the public menu and the admin API over HTTP. All
// persistence goes through the store; handlers only decode requests, call
// one store operation and map its error to a status code.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chero-kobuleti/menu/internal/auth"
	"github.com/chero-kobuleti/menu/internal/store"
)

// Options tunes the server.
type Options struct {
	// LoginRate is the sustained login attempts per second allowed from one
	// client address; LoginBurst attempts may be made at once.
	LoginRate  rate.Limit
	LoginBurst int
	// SecureCookies marks the session cookie Secure. Enable behind TLS.
	SecureCookies bool
	// TrustedProxies lists the proxy addresses or CIDRs whose
	// X-Forwarded-For header names the client. Empty trusts none, so the
	// login limiter keys on the socket address.
	TrustedProxies []string
}

// Default login throttling: a burst of 5 attempts, then one every 12s.
const (
	DefaultLoginRate  = rate.Limit(1.0 / 12)
	DefaultLoginBurst = 5
)

// Server holds the handlers' dependencies.
type Server struct {
	store  *store.Store
	auth   *auth.Manager
	opts   Options
	log    *zap.Logger
	logins *ipLimiter
}

// New returns a Server over st. A nil logger discards output.
func New(st *store.Store, am *auth.Manager, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.LoginRate <= 0 {
		opts.LoginRate = DefaultLoginRate
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = DefaultLoginBurst
	}
	return &Server{
		store:  st,
		auth:   am,
		opts:   opts,
		log:    log.Named("http"),
		logins: newIPLimiter(opts.LoginRate, opts.LoginBurst),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	if err := r.SetTrustedProxies(s.opts.TrustedProxies); err != nil {
		s.log.Error("invalid trusted proxies, trusting none", zap.Strings("proxies", s.opts.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), s.requestLogger(), observe())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/menu", s.getMenu)

	r.POST("/api/admin/login", s.login)
	r.POST("/api/admin/logout", s.logout)

	admin := r.Group("/api/admin", s.requireAdmin())
	{
		admin.GET("/categories", s.listCategories)
		admin.POST("/categories", s.upsertCategory)
		admin.POST("/categories/reorder", s.reorderCategories)
		admin.POST("/categories/bulk", s.replaceCategories)
		admin.POST("/categories/status", s.setCategoryStatus)
		admin.DELETE("/categories/:id", s.deleteCategory)

		admin.GET("/dishes", s.listDishes)
		admin.POST("/dishes", s.upsertDish)
		admin.POST("/dishes/reorder", s.reorderDishes)
		admin.POST("/dishes/bulk", s.bulkDishes)
		admin.POST("/dishes/status", s.setDishStatus)
		admin.POST("/dishes/photo", s.setDishPhoto)
		admin.DELETE("/dishes/:id", s.deleteDish)

		admin.GET("/history", s.listHistory)
		admin.POST("/history/restore", s.restore)
		admin.POST("/history/prune", s.prune)
	}
	return r
}
