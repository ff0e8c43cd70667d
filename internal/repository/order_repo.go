package repository

import (
	"context"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository owns orders and their line items.
type OrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindByIDForUpdateTx locks the order row and loads its items; used by
	// the reversal paths to serialize concurrent cancellations.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error

	FindItemByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindItemByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Item, error)
	MarkItemCanceledTx(tx *gorm.DB, id uuid.UUID) error
	UpdateItemAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	// CountRemainingItems counts non-canceled items of an order.
	CountRemainingItems(ctx context.Context, orderID uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", id).Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).Preload("Product").First(&it, "id = ?", id).Error
	return &it, err
}

func (r *orderRepo) FindItemByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	var it model.Item
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&it, "id = ?", id).Error
	return &it, err
}

func (r *orderRepo) MarkItemCanceledTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Item{}).Where("id = ?", id).Update("canceled", true).Error
}

func (r *orderRepo) UpdateItemAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	return tx.Model(&model.Item{}).Where("id = ?", id).Update("amount", amount).Error
}

func (r *orderRepo) CountRemainingItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("order_id = ? AND canceled = false", orderID).
		Count(&n).Error
	return n, err
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
