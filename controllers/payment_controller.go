package controllers

import (
	"io"
	"net/http"

	"chainside-gateway/repository"
	"chainside-gateway/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ipnFailureMessage = "Chainside IPN request failure"

type PaymentController struct {
	Checkout   services.Gateway
	Validator  *services.Validator
	Reconciler *services.Reconciler
	Repo       repository.OrderRepository
	Logger     *zap.Logger
}

// InitiatePayment starts a Chainside payment for a pending order and
// returns the redirect URL for the buyer.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	redirectURL, svcErr := pc.Checkout.CreatePayment(c.Request.Context(), orderID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success", "redirect_url": redirectURL})
}

// ChainsideWebhook receives processor callbacks. Success is acknowledged
// with {"code":200}; every failure answers 500 with no detail, so the
// processor redelivers and token probing learns nothing.
func (pc *PaymentController) ChainsideWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		pc.Logger.Warn("Failed to read callback body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": ipnFailureMessage})
		return
	}

	event, order, err := pc.Validator.Validate(c.Request.Context(), body, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ipnFailureMessage})
		return
	}

	if err := pc.Reconciler.Apply(c.Request.Context(), order.ID, event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ipnFailureMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200})
}

// TransactionURL returns the hosted checkout page for an order's payment.
func (pc *PaymentController) TransactionURL(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := pc.Repo.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	url := pc.Checkout.TransactionURL(order)
	if url == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No payment bound to this order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction_url": url})
}
