package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/config"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/dto"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReversalEngine computes and applies the inverse of a previous allocation.
// Returns prefer the item's recorded origin area, capped by what the audit
// trail shows was actually deducted from that area for the order; the
// remainder re-enters general stock as a new lot priced at the original
// deduction cost, keeping the aggregate equal to the active lot total.
type ReversalEngine interface {
	ReturnItem(ctx context.Context, itemID uuid.UUID, reason string) (*dto.CancelItemResponse, error)
	AdjustQuantity(ctx context.Context, itemID uuid.UUID, newQuantity decimal.Decimal, reason string) (*dto.AdjustQuantityResponse, error)
	ReturnOrder(ctx context.Context, orderID uuid.UUID, reason string) (*dto.CancelOrderResponse, error)
}

type reversalEngine struct {
	cfg      *config.Config
	orders   repository.OrderRepository
	products repository.ProductRepository
	history  repository.HistoryRepository
	resolver RecipeResolver
	planner  AllocationPlanner
	ledger   StockLedger
	areas    AreaInventory
}

func NewReversalEngine(
	cfg *config.Config,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	history repository.HistoryRepository,
	resolver RecipeResolver,
	planner AllocationPlanner,
	ledger StockLedger,
	areas AreaInventory,
) ReversalEngine {
	return &reversalEngine{
		cfg:      cfg,
		orders:   orders,
		products: products,
		history:  history,
		resolver: resolver,
		planner:  planner,
		ledger:   ledger,
		areas:    areas,
	}
}

func (s *reversalEngine) ReturnItem(ctx context.Context, itemID uuid.UUID, reason string) (*dto.CancelItemResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	var orderID uuid.UUID
	txErr := runTx(ctx, s.orders.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		snapshot, err := s.orders.FindItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		// Lock order before item — same order as ReturnOrder, so concurrent
		// reversals on one order cannot deadlock.
		order, err := s.orders.FindByIDForUpdateTx(tx, snapshot.OrderID)
		if err != nil {
			return err
		}
		item, err := s.orders.FindItemByIDForUpdateTx(tx, itemID)
		if err != nil {
			return err
		}
		if item.Canceled {
			return &AlreadyCanceledError{ItemID: item.ID}
		}
		if item.Prepared {
			return &AlreadyPreparedError{ItemID: item.ID}
		}
		if err := s.returnItemStockTx(ctx, tx, item, order.OrganizationID, reason); err != nil {
			return err
		}
		if err := s.orders.MarkItemCanceledTx(tx, item.ID); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if txErr != nil {
		return nil, wrapTimeout("cancel item", txErr)
	}

	remaining, err := s.orders.CountRemainingItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("item_id", itemID.String()).Str("order_id", orderID.String()).Str("reason", reason).Msg("item canceled")
	return &dto.CancelItemResponse{OrderID: orderID.String(), RemainingItemCount: remaining}, nil
}

func (s *reversalEngine) AdjustQuantity(ctx context.Context, itemID uuid.UUID, newQuantity decimal.Decimal, reason string) (*dto.AdjustQuantityResponse, error) {
	if !newQuantity.IsPositive() {
		return nil, errors.New("new quantity must be positive; cancel the item instead")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	var resp dto.AdjustQuantityResponse
	txErr := runTx(ctx, s.orders.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		snapshot, err := s.orders.FindItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		order, err := s.orders.FindByIDForUpdateTx(tx, snapshot.OrderID)
		if err != nil {
			return err
		}
		item, err := s.orders.FindItemByIDForUpdateTx(tx, itemID)
		if err != nil {
			return err
		}
		if item.Canceled {
			return &AlreadyCanceledError{ItemID: item.ID}
		}
		if item.Prepared {
			return &AlreadyPreparedError{ItemID: item.ID}
		}

		delta := newQuantity.Sub(item.Amount)
		resp = dto.AdjustQuantityResponse{
			OrderID:          order.ID.String(),
			PreviousQuantity: item.Amount,
			NewQuantity:      newQuantity,
		}
		if delta.IsZero() {
			return nil
		}

		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ProductNotFoundError{ProductID: item.ProductID}
			}
			return err
		}

		if delta.IsNegative() {
			// Reduction: run the return path for the absolute delta.
			reqs, err := s.resolver.Expand(ctx, product, delta.Neg())
			if err != nil {
				return err
			}
			for _, r := range reqs {
				if err := s.returnRequirementTx(tx, r, item.AreaOriginID, order.ID, order.OrganizationID, reason); err != nil {
					return err
				}
			}
		} else {
			// Increase: allocate the delta the same way the original line
			// was allocated, preferring the item's recorded origin area.
			reqs, err := s.resolver.Expand(ctx, product, delta)
			if err != nil {
				return err
			}
			note := fmt.Sprintf("adjust item %s: %s", item.ID, reason)
			reserved := NewReservations()
			for _, r := range reqs {
				plan, err := s.planner.PlanTx(tx, product, r.IngredientID, r.Quantity, item.AreaOriginID, order.OrganizationID, reserved)
				if err != nil {
					return err
				}
				rp := requirementPlan{req: r, plan: plan}
				if err := applyRequirementPlanTx(tx, s.ledger, s.areas, s.history, rp, order.ID, order.OrganizationID, note); err != nil {
					return err
				}
			}
		}

		// The stock movement succeeded; only now touch the item amount.
		return s.orders.UpdateItemAmountTx(tx, item.ID, newQuantity)
	})
	if txErr != nil {
		return nil, wrapTimeout("adjust item quantity", txErr)
	}
	return &resp, nil
}

func (s *reversalEngine) ReturnOrder(ctx context.Context, orderID uuid.UUID, reason string) (*dto.CancelOrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	var resp dto.CancelOrderResponse
	txErr := runTx(ctx, s.orders.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDForUpdateTx(tx, orderID)
		if err != nil {
			return err
		}

		// Mixed orders are rejected whole: partial cancellation with some
		// items already prepared is not supported.
		prepared := 0
		for _, item := range order.Items {
			if !item.Canceled && item.Prepared {
				prepared++
			}
		}
		if prepared > 0 {
			return &CannotCancelPreparedItemsError{OrderID: order.ID, PreparedCount: prepared}
		}

		for i := range order.Items {
			item := &order.Items[i]
			if item.Canceled {
				continue
			}
			if err := s.returnItemStockTx(ctx, tx, item, order.OrganizationID, reason); err != nil {
				return err
			}
			if err := s.orders.MarkItemCanceledTx(tx, item.ID); err != nil {
				return err
			}
			resp.ItemsCanceled++
			resp.ItemsReturned++
		}
		return s.orders.UpdateStatusTx(tx, order.ID, model.OrderCanceled)
	})
	if txErr != nil {
		return nil, wrapTimeout("cancel order", txErr)
	}
	log.Info().Str("order_id", orderID.String()).Int("items", resp.ItemsCanceled).Str("reason", reason).Msg("order canceled")
	return &resp, nil
}

// returnItemStockTx expands the item the same way allocation did and returns
// each resolved requirement.
func (s *reversalEngine) returnItemStockTx(ctx context.Context, tx *gorm.DB, item *model.Item, orgID uuid.UUID, reason string) error {
	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProductNotFoundError{ProductID: item.ProductID}
		}
		return err
	}
	reqs, err := s.resolver.Expand(ctx, product, item.Amount)
	if err != nil {
		return err
	}
	for _, r := range reqs {
		if err := s.returnRequirementTx(tx, r, item.AreaOriginID, item.OrderID, orgID, reason); err != nil {
			return err
		}
	}
	return nil
}

// returnRequirementTx returns one resolved quantity. The origin area is
// credited up to what the audit trail shows is still outstanding there for
// this order; the rest re-enters general stock as a new lot. The trail is
// re-read inside the transaction on every call, so multiple returns against
// the same order account against each other.
func (s *reversalEngine) returnRequirementTx(tx *gorm.DB, req IngredientRequirement, areaOrigin *uuid.UUID, orderID, orgID uuid.UUID, reason string) error {
	trail, err := s.history.ListByReferenceTx(tx, orderID)
	if err != nil {
		return err
	}

	ref := orderID
	remaining := req.Quantity

	if areaOrigin != nil {
		outstanding := areaOutstanding(trail, req.IngredientID, *areaOrigin)
		toArea := decimal.Min(remaining, outstanding)
		if toArea.IsPositive() {
			if err := s.areas.ReplenishTx(tx, *areaOrigin, req.IngredientID, orgID, toArea); err != nil {
				return err
			}
			entry := &model.StockHistory{
				Type:           model.HistoryEntrance,
				Quantity:       toArea,
				ProductID:      req.IngredientID,
				ReferenceID:    &ref,
				AreaID:         areaOrigin,
				OrganizationID: orgID,
				Note:           reason,
			}
			if err := s.history.CreateTx(tx, entry); err != nil {
				return err
			}
			remaining = remaining.Sub(toArea)
		}
	}

	if remaining.IsPositive() {
		unitCost := generalExitCost(trail, req.IngredientID)
		if _, err := s.ledger.ReplenishTx(tx, req.IngredientID, orgID, remaining, unitCost, decimal.Zero); err != nil {
			return err
		}
		entry := &model.StockHistory{
			Type:           model.HistoryEntrance,
			Quantity:       remaining,
			UnitPrice:      unitCost,
			ProductID:      req.IngredientID,
			ReferenceID:    &ref,
			OrganizationID: orgID,
			Note:           reason,
		}
		if err := s.history.CreateTx(tx, entry); err != nil {
			return err
		}
	}
	return nil
}

// areaOutstanding is the quantity deducted from one area for this reference
// minus what has already been returned there.
func areaOutstanding(trail []model.StockHistory, productID, areaID uuid.UUID) decimal.Decimal {
	out := decimal.Zero
	for _, e := range trail {
		if e.ProductID != productID || e.AreaID == nil || *e.AreaID != areaID {
			continue
		}
		switch e.Type {
		case model.HistoryExit:
			out = out.Add(e.Quantity)
		case model.HistoryEntrance:
			out = out.Sub(e.Quantity)
		}
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// generalExitCost is the cost-weighted unit price of the general-stock exits
// recorded for this reference and product; zero when none carry a price.
func generalExitCost(trail []model.StockHistory, productID uuid.UUID) decimal.Decimal {
	qty := decimal.Zero
	cost := decimal.Zero
	for _, e := range trail {
		if e.ProductID != productID || e.Type != model.HistoryExit || e.AreaID != nil {
			continue
		}
		qty = qty.Add(e.Quantity)
		cost = cost.Add(e.Quantity.Mul(e.UnitPrice))
	}
	if qty.IsZero() {
		return decimal.Zero
	}
	return cost.DivRound(qty, 4)
}
