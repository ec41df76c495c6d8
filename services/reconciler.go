package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"chainside-gateway/awsclient"
	"chainside-gateway/models"
	"chainside-gateway/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrTransitionRejected signals a validated event whose business-rule
// conditions failed. The HTTP layer answers it the same way as a
// validation failure, so the processor redelivers later.
var ErrTransitionRejected = errors.New("callback transition rejected")

const satoshisPerBTC = 100_000_000

// PaymentEventProducer publishes payment lifecycle events downstream.
type PaymentEventProducer interface {
	SendPaymentEvent(event models.PaymentEvent) error
}

// Reconciler maps validated callback events to idempotent order-status
// transitions. All rule evaluation happens inside a transaction with the
// order row locked, so two callbacks for the same order serialize.
type Reconciler struct {
	repo        repository.OrderRepository
	producer    PaymentEventProducer
	sns         awsclient.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

func NewReconciler(repo repository.OrderRepository, producer PaymentEventProducer, sns awsclient.SNSPublisher, snsTopicArn string, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:        repo,
		producer:    producer,
		sns:         sns,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// Apply evaluates one validated event against the order's current state.
// A nil return is acknowledged with 200; any error makes the HTTP layer
// answer 500 and the processor retry delivery.
func (r *Reconciler) Apply(ctx context.Context, orderID uuid.UUID, event *models.WebhookEvent) error {
	return r.repo.Transaction(ctx, func(repo repository.OrderRepository) error {
		order, err := repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		// The first token-validated callback carrying a processor uuid
		// binds it as the order's transaction id. Set exactly once; every
		// later event must match it.
		if event.Object.UUID != "" && (order.TransactionID == nil || *order.TransactionID == "") {
			if err := repo.SetTransactionID(ctx, order.ID, event.Object.UUID); err != nil {
				return err
			}
			tid := event.Object.UUID
			order.TransactionID = &tid
			r.logger.Info("Bound payment order uuid to order",
				zap.String("order_id", order.ID.String()),
				zap.String("transaction_id", tid),
			)
		}

		switch event.Event {
		case models.EventPaymentCompleted:
			return r.applyCompleted(ctx, repo, order, event)
		case models.EventPaymentExpired, models.EventPaymentCancelled:
			return r.applyCancelled(ctx, repo, order, event)
		case models.EventPaymentOverpaid:
			return r.applyOverpaid(ctx, repo, order, event)
		default:
			// Disputes and chargebacks are acknowledged without a transition.
			r.logger.Info("No transition for callback event",
				zap.String("event", event.Event),
				zap.String("order_id", order.ID.String()),
			)
			return nil
		}
	})
}

func (r *Reconciler) applyCompleted(ctx context.Context, repo repository.OrderRepository, order *models.Order, event *models.WebhookEvent) error {
	transactionID := ""
	if order.TransactionID != nil {
		transactionID = *order.TransactionID
	}

	paidCents := fiatCents(event.Object.State.Paid.Fiat)
	unpaidCents := fiatCents(event.Object.State.Unpaid.Fiat)

	if event.Object.Reference != order.ID.String() ||
		event.Object.UUID == "" ||
		event.Object.UUID != transactionID ||
		unpaidCents != 0 ||
		paidCents != order.Amount {
		r.logger.Warn("Rejecting payment.completed callback",
			zap.String("order_id", order.ID.String()),
			zap.String("uuid", event.Object.UUID),
			zap.String("transaction_id", transactionID),
			zap.Int("paid_cents", paidCents),
			zap.Int("unpaid_cents", unpaidCents),
			zap.Int("order_amount", order.Amount),
		)
		return ErrTransitionRejected
	}

	switch order.Status {
	case models.OrderStatusProcessing:
		// Redelivered event, already applied.
		return nil
	case models.OrderStatusCancelled:
		r.logger.Warn("payment.completed for a cancelled order",
			zap.String("order_id", order.ID.String()),
		)
		return ErrTransitionRejected
	}

	if err := repo.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing, "Order paid"); err != nil {
		return err
	}

	r.logger.Info("Order marked as processing",
		zap.String("order_id", order.ID.String()),
		zap.String("transaction_id", transactionID),
	)
	r.publishPaymentEvent(ctx, order, "payment_completed")
	return nil
}

func (r *Reconciler) applyCancelled(ctx context.Context, repo repository.OrderRepository, order *models.Order, event *models.WebhookEvent) error {
	transactionID := ""
	if order.TransactionID != nil {
		transactionID = *order.TransactionID
	}

	if event.Object.Reference != order.ID.String() ||
		event.Object.UUID == "" ||
		event.Object.UUID != transactionID {
		r.logger.Warn("Rejecting cancellation callback",
			zap.String("order_id", order.ID.String()),
			zap.String("event", event.Event),
			zap.String("uuid", event.Object.UUID),
			zap.String("transaction_id", transactionID),
		)
		return ErrTransitionRejected
	}

	switch order.Status {
	case models.OrderStatusCancelled:
		return nil
	case models.OrderStatusProcessing:
		r.logger.Warn("Cancellation callback for an already paid order",
			zap.String("order_id", order.ID.String()),
			zap.String("event", event.Event),
		)
		return ErrTransitionRejected
	}

	if err := repo.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, "Payment order cancelled"); err != nil {
		return err
	}

	r.logger.Info("Order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("event", event.Event),
	)
	r.publishPaymentEvent(ctx, order, "payment_cancelled")
	return nil
}

// applyOverpaid never changes the order status; it records an overpayment
// note when the paid crypto amount exceeds the requested one. The event
// always succeeds once validated.
func (r *Reconciler) applyOverpaid(ctx context.Context, repo repository.OrderRepository, order *models.Order, event *models.WebhookEvent) error {
	obj := event.Object
	state := obj.State

	if state.Status != "paid" || state.Paid.Fiat == 0 || state.Paid.Crypto == 0 || obj.BTCAmount == 0 {
		return nil
	}
	if state.Paid.Crypto <= obj.BTCAmount {
		return nil
	}

	excess := float64(state.Paid.Crypto-obj.BTCAmount) / satoshisPerBTC
	requested := float64(obj.BTCAmount) / satoshisPerBTC
	note := fmt.Sprintf(`Received "%.8f BTC" more than expected. Total of "%.8f BTC" or "%.2f %s".`,
		excess, requested, state.Paid.Fiat, obj.Currency.Name)

	if err := repo.AddNote(ctx, order.ID, note); err != nil {
		return err
	}

	r.logger.Info("Recorded overpayment",
		zap.String("order_id", order.ID.String()),
		zap.Float64("excess_btc", excess),
	)
	return nil
}

// publishPaymentEvent is best-effort; a broker failure never fails the
// reconciliation that triggered it.
func (r *Reconciler) publishPaymentEvent(ctx context.Context, order *models.Order, eventType string) {
	transactionID := ""
	if order.TransactionID != nil {
		transactionID = *order.TransactionID
	}

	event := models.PaymentEvent{
		Type:          eventType,
		OrderID:       order.ID.String(),
		UserID:        order.UserID.String(),
		TransactionID: transactionID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Timestamp:     time.Now().UTC(),
	}

	if r.producer != nil {
		if err := r.producer.SendPaymentEvent(event); err != nil {
			r.logger.Warn("Failed to publish payment event",
				zap.String("event_type", eventType),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}

	if r.sns != nil && r.snsTopicArn != "" {
		payload, _ := json.Marshal(event)
		if err := r.sns.Publish(ctx, r.snsTopicArn, payload); err != nil {
			r.logger.Warn("SNS publish failed",
				zap.String("event_type", eventType),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}
}

// fiatCents converts a fiat amount from the callback payload to the
// smallest currency unit for exact comparison against the order total.
func fiatCents(amount float64) int {
	return int(math.Round(amount * 100))
}
