package service

import (
	"context"
	"errors"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AreaInventory owns the per-area reserves (economato). Deductions are
// capped by the planner to the area's available quantity, so DeductTx
// failing mid-commit indicates a plan/apply divergence, not a user error.
type AreaInventory interface {
	DeductTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID, quantity decimal.Decimal) error
	// ReplenishTx credits the reserve, creating the row if absent.
	ReplenishTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID, quantity decimal.Decimal) error
	// PeekAvailable is the lock-free read; absent row means zero.
	PeekAvailable(ctx context.Context, areaID, productID, orgID uuid.UUID) (decimal.Decimal, error)
	// AvailableTx reads the reserve under a row lock held until tx end.
	AvailableTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID) (decimal.Decimal, error)
	// HoldingsTx returns every locked reserve row for a product, largest
	// first — the planner's fallback scan.
	HoldingsTx(tx *gorm.DB, productID, orgID uuid.UUID) ([]model.AreaStock, error)
	// Holdings is the lock-free variant used by availability snapshots.
	Holdings(ctx context.Context, productID, orgID uuid.UUID) ([]model.AreaStock, error)
}

type areaInventory struct {
	repo repository.AreaRepository
}

func NewAreaInventory(repo repository.AreaRepository) AreaInventory {
	return &areaInventory{repo: repo}
}

func (s *areaInventory) DeductTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return &DataIntegrityError{Detail: "area deduction quantity must be positive"}
	}
	row, err := s.repo.FindAreaStockForUpdateTx(tx, areaID, productID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InsufficientStockError{ProductID: productID, Required: quantity, Available: decimal.Zero}
		}
		return err
	}
	if row.Quantity.LessThan(quantity) {
		return &InsufficientStockError{ProductID: productID, Required: quantity, Available: row.Quantity}
	}
	rows, err := s.repo.AddQuantityTx(tx, row.ID, quantity.Neg())
	if err != nil {
		return err
	}
	if rows == 0 {
		return &DataIntegrityError{Detail: "area reserve would go negative for product " + productID.String()}
	}
	return nil
}

func (s *areaInventory) ReplenishTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return &DataIntegrityError{Detail: "area replenish quantity must be positive"}
	}
	return s.repo.UpsertAddTx(tx, areaID, productID, orgID, quantity)
}

func (s *areaInventory) PeekAvailable(ctx context.Context, areaID, productID, orgID uuid.UUID) (decimal.Decimal, error) {
	row, err := s.repo.FindAreaStock(ctx, areaID, productID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return row.Quantity, nil
}

func (s *areaInventory) AvailableTx(tx *gorm.DB, areaID, productID, orgID uuid.UUID) (decimal.Decimal, error) {
	row, err := s.repo.FindAreaStockForUpdateTx(tx, areaID, productID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return row.Quantity, nil
}

func (s *areaInventory) HoldingsTx(tx *gorm.DB, productID, orgID uuid.UUID) ([]model.AreaStock, error) {
	return s.repo.ListByProductForUpdateTx(tx, productID, orgID)
}

func (s *areaInventory) Holdings(ctx context.Context, productID, orgID uuid.UUID) ([]model.AreaStock, error) {
	return s.repo.ListByProduct(ctx, productID, orgID)
}
