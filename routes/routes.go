package routes

import (
	"net/http"

	"chainside-gateway/controllers"
	"chainside-gateway/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	payments.POST("/initiate", pc.InitiatePayment)
	payments.GET("/:order_id/transaction-url", pc.TransactionURL)

	// Processor callback (no auth; authenticated by the per-order token).
	// Registered for any method since the processor's delivery method is
	// not part of the contract.
	r.Any("/chainside/webhook", pc.ChainsideWebhook)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
