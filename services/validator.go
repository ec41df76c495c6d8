package services

import (
	"context"
	"encoding/json"
	"errors"

	"chainside-gateway/models"
	"chainside-gateway/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidCallback is the single error returned for every validation
// failure. Callers must not reveal which check failed.
var ErrInvalidCallback = errors.New("invalid callback")

var recognizedEvents = map[string]bool{
	models.EventPaymentCompleted:    true,
	models.EventPaymentDisputeStart: true,
	models.EventPaymentOverpaid:     true,
	models.EventPaymentCancelled:    true,
	models.EventPaymentDisputeEnd:   true,
	models.EventPaymentExpired:      true,
	models.EventPaymentChargeback:   true,
}

// Validator authenticates inbound Chainside callbacks against the
// per-order token and the recognized event set.
type Validator struct {
	repo   repository.OrderRepository
	tokens *TokenStore
	logger *zap.Logger
}

func NewValidator(repo repository.OrderRepository, tokens *TokenStore, logger *zap.Logger) *Validator {
	return &Validator{repo: repo, tokens: tokens, logger: logger}
}

// Validate parses and authenticates a raw callback payload. The raw body
// is logged verbatim before any check so rejected deliveries can be
// replayed offline.
func (v *Validator) Validate(ctx context.Context, rawBody []byte, queryToken string) (*models.WebhookEvent, *models.Order, error) {
	v.logger.Info("Received Chainside callback", zap.ByteString("payload", rawBody))

	var event models.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		v.logger.Warn("Callback body is not valid JSON", zap.Error(err))
		return nil, nil, ErrInvalidCallback
	}

	if !recognizedEvents[event.Event] {
		v.logger.Warn("Unrecognized callback event", zap.String("event", event.Event))
		return nil, nil, ErrInvalidCallback
	}

	if event.ObjectType != models.ObjectTypePaymentOrder {
		v.logger.Warn("Unexpected callback object type", zap.String("object_type", event.ObjectType))
		return nil, nil, ErrInvalidCallback
	}

	if event.Object.Reference == "" {
		v.logger.Warn("Callback missing reference")
		return nil, nil, ErrInvalidCallback
	}

	orderID, err := uuid.Parse(event.Object.Reference)
	if err != nil {
		v.logger.Warn("Callback reference is not a valid order id", zap.String("reference", event.Object.Reference))
		return nil, nil, ErrInvalidCallback
	}

	order, err := v.repo.GetOrder(ctx, orderID)
	if err != nil {
		v.logger.Warn("Callback reference does not resolve to an order",
			zap.String("reference", event.Object.Reference),
			zap.Error(err),
		)
		return nil, nil, ErrInvalidCallback
	}

	stored, err := v.tokens.StoredToken(ctx, orderID)
	if err != nil {
		v.logger.Warn("No callback token stored for order",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, nil, ErrInvalidCallback
	}

	if queryToken == "" || stored != queryToken {
		v.logger.Warn("Callback token mismatch", zap.String("order_id", orderID.String()))
		return nil, nil, ErrInvalidCallback
	}

	return &event, order, nil
}
