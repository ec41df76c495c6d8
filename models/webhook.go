package models

// Callback event kinds sent by the Chainside webPOS.
const (
	EventPaymentCompleted    = "payment.completed"
	EventPaymentDisputeStart = "payment.dispute.start"
	EventPaymentOverpaid     = "payment.overpaid"
	EventPaymentCancelled    = "payment.cancelled"
	EventPaymentDisputeEnd   = "payment.dispute.end"
	EventPaymentExpired      = "payment.expired"
	EventPaymentChargeback   = "payment.chargeback"
)

const ObjectTypePaymentOrder = "payment_order"

// WebhookEvent is the decoded Chainside callback payload. It is consumed
// per request and never persisted.
type WebhookEvent struct {
	Event      string             `json:"event"`
	ObjectType string             `json:"object_type"`
	Object     PaymentOrderObject `json:"object"`
}

type PaymentOrderObject struct {
	Reference string       `json:"reference"` // merchant order id echoed by the processor
	UUID      string       `json:"uuid"`      // processor-side payment order id
	State     PaymentState `json:"state"`
	BTCAmount int64        `json:"btc_amount"` // requested amount in satoshis
	Currency  CurrencyInfo `json:"currency"`
}

type PaymentState struct {
	Status string        `json:"status"`
	Paid   PaidAmounts   `json:"paid"`
	Unpaid UnpaidAmounts `json:"unpaid"`
}

type PaidAmounts struct {
	Fiat   float64 `json:"fiat"`
	Crypto int64   `json:"crypto"` // satoshis
}

type UnpaidAmounts struct {
	Fiat float64 `json:"fiat"`
}

type CurrencyInfo struct {
	Name string `json:"name"`
}
