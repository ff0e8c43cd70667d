package service

import (
	"context"
	"errors"
	"time"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LotDeduction records one FIFO consumption step: how much was taken from
// which lot, at that lot's purchase cost.
type LotDeduction struct {
	LotID    uuid.UUID
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// WeightedUnitCost returns the cost-weighted average unit price of a set of
// lot deductions. Zero when nothing was deducted.
func WeightedUnitCost(deds []LotDeduction) decimal.Decimal {
	total := decimal.Zero
	cost := decimal.Zero
	for _, d := range deds {
		total = total.Add(d.Quantity)
		cost = cost.Add(d.Quantity.Mul(d.UnitCost))
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return cost.DivRound(total, 4)
}

// StockLedger owns the general-warehouse aggregate per product and the FIFO
// queue of cost lots behind it.
type StockLedger interface {
	// DeductTx consumes quantity from active lots oldest-purchase-first and
	// decrements the stock aggregate, all inside the caller's transaction.
	// Nothing is mutated when total lot quantity is short.
	DeductTx(tx *gorm.DB, productID, orgID uuid.UUID, quantity decimal.Decimal) ([]LotDeduction, error)
	// ReplenishTx creates a new active lot and credits the aggregate.
	ReplenishTx(tx *gorm.DB, productID, orgID uuid.UUID, quantity, unitCost, unitSaleCost decimal.Decimal) (*model.Lot, error)
	// PeekAvailable is the lock-free aggregate read; absent row means zero.
	PeekAvailable(ctx context.Context, productID, orgID uuid.UUID) (decimal.Decimal, error)
	// AvailableTx reads the aggregate under a row lock held until tx end —
	// the planner uses it so planning and applying cannot diverge.
	AvailableTx(tx *gorm.DB, productID, orgID uuid.UUID) (decimal.Decimal, error)
}

type stockLedger struct {
	repo repository.StockRepository
}

func NewStockLedger(repo repository.StockRepository) StockLedger {
	return &stockLedger{repo: repo}
}

func (s *stockLedger) DeductTx(tx *gorm.DB, productID, orgID uuid.UUID, quantity decimal.Decimal) ([]LotDeduction, error) {
	if !quantity.IsPositive() {
		return nil, &DataIntegrityError{Detail: "deduction quantity must be positive"}
	}

	stock, err := s.repo.FindByProductForUpdateTx(tx, productID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InsufficientStockError{ProductID: productID, Required: quantity, Available: decimal.Zero}
		}
		return nil, err
	}

	lots, err := s.repo.ActiveLotsForUpdateTx(tx, productID, orgID)
	if err != nil {
		return nil, err
	}

	// Check the whole demand against the lot total before touching any row,
	// so a shortfall mutates nothing.
	available := decimal.Zero
	for _, lot := range lots {
		available = available.Add(lot.Quantity)
	}
	if available.LessThan(quantity) {
		return nil, &InsufficientStockError{ProductID: productID, Required: quantity, Available: available}
	}

	remaining := quantity
	var deds []LotDeduction
	for _, lot := range lots {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(lot.Quantity, remaining)
		left := lot.Quantity.Sub(take)
		// A lot is deactivated exactly when its remaining quantity hits zero.
		if err := s.repo.UpdateLotTx(tx, lot.ID, left, left.IsPositive()); err != nil {
			return nil, err
		}
		deds = append(deds, LotDeduction{LotID: lot.ID, Quantity: take, UnitCost: lot.UnitCost})
		remaining = remaining.Sub(take)
	}

	rows, err := s.repo.AddQuantityTx(tx, stock.ID, quantity.Neg())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lots covered the demand but the aggregate would go negative: the
		// aggregate and the lot queue disagree. Abort, never clamp.
		return nil, &DataIntegrityError{Detail: "stock aggregate diverged from lot total for product " + productID.String()}
	}
	return deds, nil
}

func (s *stockLedger) ReplenishTx(tx *gorm.DB, productID, orgID uuid.UUID, quantity, unitCost, unitSaleCost decimal.Decimal) (*model.Lot, error) {
	if !quantity.IsPositive() {
		return nil, &DataIntegrityError{Detail: "replenish quantity must be positive"}
	}
	lot := &model.Lot{
		ProductID:      productID,
		OrganizationID: orgID,
		Quantity:       quantity,
		UnitCost:       unitCost,
		UnitSaleCost:   unitSaleCost,
		PurchasedAt:    time.Now(),
		Active:         true,
	}
	if err := s.repo.CreateLotTx(tx, lot); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertAddTx(tx, productID, orgID, quantity); err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *stockLedger) PeekAvailable(ctx context.Context, productID, orgID uuid.UUID) (decimal.Decimal, error) {
	stock, err := s.repo.FindByProduct(ctx, productID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return stock.TotalQuantity, nil
}

func (s *stockLedger) AvailableTx(tx *gorm.DB, productID, orgID uuid.UUID) (decimal.Decimal, error) {
	stock, err := s.repo.FindByProductForUpdateTx(tx, productID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return stock.TotalQuantity, nil
}
