package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/server/handlers"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
)

const requestIDHeader = "X-Request-ID"

// New wires the Gin engine with required routes and middlewares.
func New(dashboard *handlers.DashboardHandler, digests *handlers.DigestHandler, sessions *handlers.SessionHandler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	session := api.Group("/session")
	session.POST("/login", sessions.Login)
	session.POST("/register", sessions.Register)
	session.POST("/logout", sessions.Logout)
	session.GET("", sessions.Current)

	protected := api.Group("", sessions.Require())

	views := protected.Group("/views")
	views.GET("/harvests", dashboard.Harvests)
	views.GET("/milling", dashboard.Milling)
	views.GET("/milling/:id", dashboard.MillingDetail)
	views.GET("/storage", dashboard.Storage)
	views.GET("/storage/:id", dashboard.StorageDetail)
	views.GET("/sales", dashboard.Sales)
	views.GET("/sales/:id", dashboard.SaleDetail)

	dash := protected.Group("/dashboard")
	dash.GET("/summary", dashboard.Summary)
	dash.GET("/trends", dashboard.Trends)
	dash.GET("/alerts", dashboard.Alerts)
	dash.GET("/digest", digests.Preview)

	protected.POST("/harvests", dashboard.CreateHarvest)
	protected.POST("/milling", dashboard.CreateMilling)
	protected.POST("/sales", dashboard.CreateSale)
	protected.PATCH("/sales/:id/payment", dashboard.MarkPaid)
	protected.GET("/reports/:format", dashboard.Report)
	protected.GET("/digests", digests.History)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(backend.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}
