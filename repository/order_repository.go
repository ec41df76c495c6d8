package repository

import (
	"context"

	"chainside-gateway/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository defines the order store operations the gateway consumes.
// It never creates or deletes orders; those belong to the host platform.
type OrderRepository interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// GetOrderForUpdate locks the order row for the duration of the
	// surrounding Transaction.
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetTransactionID(ctx context.Context, id uuid.UUID, transactionID string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error
	AddNote(ctx context.Context, id uuid.UUID, note string) error
	GetMeta(ctx context.Context, id uuid.UUID, key string) (string, error)
	SetMeta(ctx context.Context, id uuid.UUID, key, value string) error
	Transaction(ctx context.Context, fn func(repo OrderRepository) error) error
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) SetTransactionID(ctx context.Context, id uuid.UUID, transactionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("transaction_id", transactionID).Error
}

// UpdateStatus transitions the order status and records the note alongside,
// mirroring the host platform's status-change annotation semantics.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return err
	}
	if note == "" {
		return nil
	}
	return r.AddNote(ctx, id, note)
}

func (r *GormOrderRepository) AddNote(ctx context.Context, id uuid.UUID, note string) error {
	return r.db.WithContext(ctx).Create(&models.OrderNote{OrderID: id, Note: note}).Error
}

func (r *GormOrderRepository) GetMeta(ctx context.Context, id uuid.UUID, key string) (string, error) {
	var meta models.OrderMeta
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND meta_key = ?", id, key).
		First(&meta).Error; err != nil {
		return "", err
	}
	return meta.MetaValue, nil
}

func (r *GormOrderRepository) SetMeta(ctx context.Context, id uuid.UUID, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
		}).
		Create(&models.OrderMeta{OrderID: id, MetaKey: key, MetaValue: value}).Error
}

func (r *GormOrderRepository) Transaction(ctx context.Context, fn func(repo OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormOrderRepository{db: tx})
	})
}
