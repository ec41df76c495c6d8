package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses driven by reconciliation. pending -> processing on a
// matching payment.completed, pending -> cancelled on payment.expired or
// payment.cancelled. No reverse transitions.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID      `gorm:"type:uuid;index;not null"`
	Amount        int            `gorm:"not null"` // smallest fiat unit (cents)
	Currency      string         `gorm:"type:varchar(10);not null"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending'"`
	TransactionID *string        `gorm:"uniqueIndex"` // Chainside payment order uuid, set once
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// OrderMeta holds per-order key/value metadata. The callback token hash
// lives here under the "token" key.
type OrderMeta struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_meta_key"`
	MetaKey   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_order_meta_key"`
	MetaValue string    `gorm:"type:varchar(1024);not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type OrderNote struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Note      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
