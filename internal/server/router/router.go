package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(inventoryHandler *handlers.InventoryHandler, financeHandler *handlers.FinanceHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/products/search", inventoryHandler.SearchProducts)
	r.POST("/reservations", inventoryHandler.CreateReservation)
	r.POST("/reservations/:id/cancel", inventoryHandler.CancelReservation)
	r.POST("/activities/:id/finalize", inventoryHandler.FinalizeActivity)

	r.GET("/crops/:id/finance", financeHandler.Snapshot)
	r.GET("/crops/:id/completion", financeHandler.CompletionEligibility)
	r.POST("/crops/:id/complete", financeHandler.CompleteCrop)
	r.POST("/sales", financeHandler.RecordSale)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
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
			zap.String("client_ip", c.ClientIP()))
	}
}
