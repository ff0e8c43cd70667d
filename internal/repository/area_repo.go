package repository

import (
	"context"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AreaRepository owns areas and their per-area reserves (economato rows).
type AreaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Area, error)

	// FindAreaStock is the lock-free read; absent row means quantity zero.
	FindAreaStock(ctx context.Context, areaID, productID, orgID uuid.UUID) (*model.AreaStock, error)
	// FindAreaStockForUpdateTx locks the reserve row for the rest of the tx.
	FindAreaStockForUpdateTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID) (*model.AreaStock, error)
	// ListByProduct returns every reserve row holding this product, largest
	// quantity first — the planner's fallback scan order.
	ListByProduct(ctx context.Context, productID, orgID uuid.UUID) ([]model.AreaStock, error)
	// ListByProductForUpdateTx is the locked variant used inside the commit
	// transaction so planning and applying see the same rows.
	ListByProductForUpdateTx(tx *gorm.DB, productID, orgID uuid.UUID) ([]model.AreaStock, error)

	// AddQuantityTx applies a signed delta, guarded against going negative.
	AddQuantityTx(tx *gorm.DB, areaStockID uuid.UUID, delta decimal.Decimal) (rowsAffected int64, err error)
	// UpsertAddTx credits quantity, creating the reserve row if absent.
	UpsertAddTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID, quantity decimal.Decimal) error
}

type areaRepo struct{ db *gorm.DB }

func NewAreaRepository(db *gorm.DB) AreaRepository { return &areaRepo{db: db} }

func (r *areaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Area, error) {
	var a model.Area
	err := r.db.WithContext(ctx).Where("active = true").First(&a, "id = ?", id).Error
	return &a, err
}

func (r *areaRepo) FindAreaStock(ctx context.Context, areaID, productID, orgID uuid.UUID) (*model.AreaStock, error) {
	var as model.AreaStock
	err := r.db.WithContext(ctx).
		Where("area_id = ? AND product_id = ? AND organization_id = ?", areaID, productID, orgID).
		First(&as).Error
	return &as, err
}

func (r *areaRepo) FindAreaStockForUpdateTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID) (*model.AreaStock, error) {
	var as model.AreaStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("area_id = ? AND product_id = ? AND organization_id = ?", areaID, productID, orgID).
		First(&as).Error
	return &as, err
}

func (r *areaRepo) ListByProduct(ctx context.Context, productID, orgID uuid.UUID) ([]model.AreaStock, error) {
	var rows []model.AreaStock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND organization_id = ? AND quantity > 0", productID, orgID).
		Order("quantity DESC").
		Find(&rows).Error
	return rows, err
}

func (r *areaRepo) ListByProductForUpdateTx(tx *gorm.DB, productID, orgID uuid.UUID) ([]model.AreaStock, error) {
	var rows []model.AreaStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND organization_id = ? AND quantity > 0", productID, orgID).
		Order("quantity DESC").
		Find(&rows).Error
	return rows, err
}

func (r *areaRepo) AddQuantityTx(tx *gorm.DB, areaStockID uuid.UUID, delta decimal.Decimal) (int64, error) {
	res := tx.Model(&model.AreaStock{}).
		Where("id = ? AND quantity + ? >= 0", areaStockID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *areaRepo) UpsertAddTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID, quantity decimal.Decimal) error {
	res := tx.Model(&model.AreaStock{}).
		Where("area_id = ? AND product_id = ? AND organization_id = ?", areaID, productID, orgID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return tx.Create(&model.AreaStock{
		AreaID:         areaID,
		ProductID:      productID,
		OrganizationID: orgID,
		Quantity:       quantity,
	}).Error
}
