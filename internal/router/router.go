package router

import (
	"github.com/blues/mes/internal/handler"
	"github.com/blues/mes/internal/logic"
	"github.com/gin-gonic/gin"
)

func Setup(projectLogic *logic.ProjectLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "milestone-escrow-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		projectHandler := handler.NewProjectHandler(projectLogic)
		paymentHandler := handler.NewPaymentHandler(projectLogic)
		refundHandler := handler.NewRefundHandler(projectLogic)

		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.DeclareProject)
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.DELETE("/:id", projectHandler.CancelProject)
			projects.POST("/:id/payments", paymentHandler.NotifyPayment)
			projects.POST("/:id/milestones/:index/finish", projectHandler.FinishMilestone)
			projects.POST("/:id/finish", projectHandler.ForceFinish)
			projects.POST("/:id/refund", refundHandler.Refund)
			projects.GET("/:id/purchases/:address", projectHandler.GetPurchase)
			projects.GET("/:id/payments", projectHandler.GetPaymentRecords)
			projects.GET("/:id/refunds", refundHandler.GetRefundRecords)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
