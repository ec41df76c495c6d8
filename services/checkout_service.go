package services

import (
	"context"
	"fmt"
	"net/http"

	"chainside-gateway/chainside"
	"chainside-gateway/models"
	"chainside-gateway/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Gateway is the capability contract of the payment gateway.
type Gateway interface {
	// Available reports whether the gateway can take a payment for the order.
	Available(order *models.Order) bool

	// CreatePayment initiates a Chainside payment order and returns the
	// redirect URL the buyer should be sent to.
	CreatePayment(ctx context.Context, orderID uuid.UUID) (string, *ServiceError)

	// TransactionURL returns the hosted checkout page for the order's
	// bound payment, or "" when no payment is bound yet.
	TransactionURL(order *models.Order) string
}

// CheckoutService implements Gateway against the Chainside webPOS.
type CheckoutService struct {
	repo          repository.OrderRepository
	tokens        *TokenStore
	processor     chainside.Processor
	storeBaseURL  string
	confirmations int
	enabled       bool
	logger        *zap.Logger
}

func NewCheckoutService(repo repository.OrderRepository, tokens *TokenStore, processor chainside.Processor, storeBaseURL string, confirmations int, enabled bool, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		repo:          repo,
		tokens:        tokens,
		processor:     processor,
		storeBaseURL:  storeBaseURL,
		confirmations: confirmations,
		enabled:       enabled,
		logger:        logger,
	}
}

func (s *CheckoutService) Available(order *models.Order) bool {
	return s.enabled && order != nil && order.Amount > 0
}

// CreatePayment runs the checkout-initiation flow: mint a fresh callback
// token, build the redirect/callback URLs, exchange credentials for a
// bearer token and create the payment order. No order state is mutated on
// failure; the next attempt simply overwrites the callback token.
func (s *CheckoutService) CreatePayment(ctx context.Context, orderID uuid.UUID) (string, *ServiceError) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
	}
	if !s.Available(order) {
		return "", &ServiceError{StatusCode: http.StatusConflict, Message: "Payment gateway is not available for this order"}
	}
	if order.Status != models.OrderStatusPending {
		return "", &ServiceError{StatusCode: http.StatusConflict, Message: "Order is not awaiting payment"}
	}

	token, err := s.tokens.IssueToken(ctx, order.ID)
	if err != nil {
		s.logger.Error("Failed to issue callback token",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to prepare payment"}
	}

	req := chainside.PaymentOrderRequest{
		Amount:                formatAmount(order.Amount),
		CancelURL:             s.storeBaseURL + "/checkout",
		CallbackURL:           fmt.Sprintf("%s/chainside/webhook?token=%s", s.storeBaseURL, token),
		ContinueURL:           fmt.Sprintf("%s/checkout/order-received/%s", s.storeBaseURL, order.ID),
		Details:               "details",
		Reference:             order.ID.String(),
		RequiredConfirmations: s.confirmations,
	}

	accessToken, err := s.processor.AccessToken(ctx)
	if err != nil {
		s.logger.Error("Chainside token exchange failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return "", &ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment error"}
	}

	resp, err := s.processor.CreatePaymentOrder(ctx, accessToken, req)
	if err != nil {
		s.logger.Error("Chainside payment order creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return "", &ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment error"}
	}

	switch {
	case resp.RedirectURL != "":
		s.logger.Info("Payment order created",
			zap.String("order_id", order.ID.String()),
			zap.String("payment_uuid", resp.UUID),
		)
		return resp.RedirectURL, nil
	case resp.Message != "":
		s.logger.Warn("Chainside declined payment order",
			zap.String("order_id", order.ID.String()),
			zap.String("message", resp.Message),
		)
		return "", &ServiceError{StatusCode: http.StatusPaymentRequired, Message: "Payment error: " + resp.Message}
	default:
		// Neither redirect_url nor message: malformed response. Log it,
		// tell the buyer nothing beyond a generic failure.
		s.logger.Error("Unexpected Chainside response",
			zap.String("order_id", order.ID.String()),
			zap.Any("response", resp),
		)
		return "", &ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment error"}
	}
}

func (s *CheckoutService) TransactionURL(order *models.Order) string {
	if order == nil || order.TransactionID == nil || *order.TransactionID == "" {
		return ""
	}
	return s.processor.TransactionURL(*order.TransactionID)
}

// formatAmount renders cents as a fixed two-decimal fiat string, the
// format the payment-order endpoint expects.
func formatAmount(cents int) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
