package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/service"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business services the handlers call.
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Stores    *service.StoreService
	Products  *service.ProductService
	Orders    *service.OrderService
	Dashboard *service.DashboardService
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	deps   map[string]Pinger
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler. deps are pinged by /ready.
func NewHandler(svc Services, deps map[string]Pinger) *Handler {
	return &Handler{
		svc:    svc,
		deps:   deps,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)
	}

	authed := v1.Group("")
	authed.Use(h.authMiddleware())
	{
		authed.GET("/auth/me", h.me)

		authed.GET("/orders", h.listOrders)
		authed.POST("/orders", h.createOrder)
		authed.GET("/orders/me", h.listMyStoreOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.PUT("/orders/:id/status", h.updateOrderStatus)
		authed.POST("/orders/:id/comment", h.addOrderComment)
		authed.PUT("/orders/:id/refund", h.updateRefundSummary)
		authed.PUT("/orders/:id/issues", h.updateOrderIssues)

		authed.GET("/stores", h.listStores)
		authed.POST("/stores", h.createStore)
		authed.GET("/stores/:id", h.getStore)
		authed.PUT("/stores/:id", h.updateStore)
		authed.DELETE("/stores/:id", h.deleteStore)
		authed.POST("/stores/:id/documents", h.uploadStoreDocument)

		authed.GET("/products", h.listProducts)
		authed.POST("/products", h.createProduct)
		authed.GET("/products/:id", h.getProduct)
		authed.PUT("/products/:id", h.updateProduct)
		authed.DELETE("/products/:id", h.deleteProduct)

		authed.GET("/users", h.listUsers)
		authed.PUT("/users/:id/role", h.updateUserRole)
		authed.DELETE("/users/:id", h.deleteUser)

		authed.GET("/dashboard/stats", h.dashboardStats)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency and reports the ones that failed
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
