package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/config"
	"github.com/mamadbah2/armory/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(authCfg config.AuthConfig, dashboard *handlers.DashboardHandler, ledger *handlers.LedgerHandler, auditTrail *handlers.AuditHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authorized := r.Group("/")
	authorized.Use(BearerAuth(authCfg, logger))

	authorized.GET("/dashboard", dashboard.Get)

	authorized.POST("/purchases", ledger.CreatePurchase)
	authorized.GET("/purchases", ledger.ListPurchases)
	authorized.POST("/transfers", ledger.CreateTransfer)
	authorized.GET("/transfers", ledger.ListTransfers)
	authorized.POST("/assignments", ledger.CreateAssignment)
	authorized.GET("/assignments", ledger.ListAssignments)
	authorized.POST("/expenditures", ledger.CreateExpenditure)
	authorized.GET("/expenditures", ledger.ListExpenditures)

	authorized.POST("/bases", ledger.CreateBase)
	authorized.GET("/bases", ledger.ListBases)
	authorized.GET("/bases/:id", ledger.GetBase)
	authorized.POST("/equipments", ledger.CreateEquipment)
	authorized.GET("/equipments", ledger.ListEquipments)

	authorized.GET("/auditlog", auditTrail.List)

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
