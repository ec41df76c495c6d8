package models

import "time"

// PaymentEvent is published to Kafka (and mirrored to SNS when configured)
// after a reconciliation transition is applied.
type PaymentEvent struct {
	Type          string    `json:"type"` // "payment_completed" or "payment_cancelled"
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"` // Chainside payment order uuid
	Amount        int       `json:"amount"`         // smallest currency unit
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"` // UTC event time
}
