package repository

import (
	"context"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository owns the general-warehouse aggregate and its FIFO cost
// lots. All mutating methods take the caller's transaction — stock is only
// ever written inside an engine transaction.
type StockRepository interface {
	// FindByProduct is the lock-free read used for availability snapshots.
	FindByProduct(ctx context.Context, productID, orgID uuid.UUID) (*model.Stock, error)
	// FindByProductForUpdateTx locks the stock row for the rest of the tx.
	FindByProductForUpdateTx(tx *gorm.DB, productID, orgID uuid.UUID) (*model.Stock, error)
	// AddQuantityTx applies a signed delta to TotalQuantity. The guard
	// rejects updates that would drive the aggregate negative.
	AddQuantityTx(tx *gorm.DB, stockID uuid.UUID, delta decimal.Decimal) (rowsAffected int64, err error)
	// UpsertAddTx credits quantity, creating the 1:1 row on first entry.
	UpsertAddTx(tx *gorm.DB, productID, orgID uuid.UUID, quantity decimal.Decimal) error

	// ActiveLotsForUpdateTx returns active lots oldest-purchase-first, locked
	// for the rest of the tx.
	ActiveLotsForUpdateTx(tx *gorm.DB, productID, orgID uuid.UUID) ([]model.Lot, error)
	CreateLotTx(tx *gorm.DB, lot *model.Lot) error
	// UpdateLotTx persists quantity/active after a FIFO consumption step.
	UpdateLotTx(tx *gorm.DB, lotID uuid.UUID, quantity decimal.Decimal, active bool) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) FindByProduct(ctx context.Context, productID, orgID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND organization_id = ?", productID, orgID).
		First(&s).Error
	return &s, err
}

func (r *stockRepo) FindByProductForUpdateTx(tx *gorm.DB, productID, orgID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND organization_id = ?", productID, orgID).
		First(&s).Error
	return &s, err
}

func (r *stockRepo) AddQuantityTx(tx *gorm.DB, stockID uuid.UUID, delta decimal.Decimal) (int64, error) {
	res := tx.Model(&model.Stock{}).
		Where("id = ? AND total_quantity + ? >= 0", stockID, delta).
		Update("total_quantity", gorm.Expr("total_quantity + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *stockRepo) UpsertAddTx(tx *gorm.DB, productID, orgID uuid.UUID, quantity decimal.Decimal) error {
	res := tx.Model(&model.Stock{}).
		Where("product_id = ? AND organization_id = ?", productID, orgID).
		Update("total_quantity", gorm.Expr("total_quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return tx.Create(&model.Stock{
		ProductID:      productID,
		OrganizationID: orgID,
		TotalQuantity:  quantity,
	}).Error
}

func (r *stockRepo) ActiveLotsForUpdateTx(tx *gorm.DB, productID, orgID uuid.UUID) ([]model.Lot, error) {
	var lots []model.Lot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND organization_id = ? AND active = true AND quantity > 0", productID, orgID).
		Order("purchased_at ASC, created_at ASC").
		Find(&lots).Error
	return lots, err
}

func (r *stockRepo) CreateLotTx(tx *gorm.DB, lot *model.Lot) error {
	return tx.Create(lot).Error
}

func (r *stockRepo) UpdateLotTx(tx *gorm.DB, lotID uuid.UUID, quantity decimal.Decimal, active bool) error {
	return tx.Model(&model.Lot{}).Where("id = ?", lotID).
		Updates(map[string]interface{}{"quantity": quantity, "active": active}).Error
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
