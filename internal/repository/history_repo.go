package repository

import (
	"context"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository appends to and reads the stock audit trail. There is no
// update or delete — the trail is the sole source of truth for reversals.
type HistoryRepository interface {
	CreateTx(tx *gorm.DB, h *model.StockHistory) error
	// ListByReference returns every entry written for one order/item/purchase.
	ListByReference(ctx context.Context, referenceID uuid.UUID) ([]model.StockHistory, error)
	// ListByReferenceTx reads the trail inside the caller's transaction so a
	// reversal accounts against exactly what it is about to undo.
	ListByReferenceTx(tx *gorm.DB, referenceID uuid.UUID) ([]model.StockHistory, error)
	// ListByProduct returns the newest entries first, paginated.
	ListByProduct(ctx context.Context, productID, orgID uuid.UUID, page, limit int) ([]model.StockHistory, int64, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) HistoryRepository { return &historyRepo{db: db} }

func (r *historyRepo) CreateTx(tx *gorm.DB, h *model.StockHistory) error {
	return tx.Create(h).Error
}

func (r *historyRepo) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]model.StockHistory, error) {
	var entries []model.StockHistory
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *historyRepo) ListByReferenceTx(tx *gorm.DB, referenceID uuid.UUID) ([]model.StockHistory, error) {
	var entries []model.StockHistory
	err := tx.Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *historyRepo) ListByProduct(ctx context.Context, productID, orgID uuid.UUID, page, limit int) ([]model.StockHistory, int64, error) {
	var entries []model.StockHistory
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockHistory{}).
		Where("product_id = ? AND organization_id = ?", productID, orgID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}
