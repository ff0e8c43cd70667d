package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/config"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/dto"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderCoordinator orchestrates order placement end to end: validate the
// mesa, claim or verify the session, build one deduction plan per resolved
// ingredient, then commit order + items + deductions + audit entries as a
// single transaction. A request that fails at any step leaves zero visible
// side effects.
type OrderCoordinator interface {
	PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (*dto.PlaceOrderResponse, error)
	VerifyOrClaimSession(ctx context.Context, req dto.ClaimSessionRequest) (*dto.SessionResponse, error)
	// CloseSession ends a mesa occupation and frees the mesa.
	CloseSession(ctx context.Context, sessionID uuid.UUID) error
}

type orderCoordinator struct {
	cfg        *config.Config
	mesas      repository.MesaRepository
	sessions   repository.SessionRepository
	orders     repository.OrderRepository
	products   repository.ProductRepository
	history    repository.HistoryRepository
	resolver   RecipeResolver
	planner    AllocationPlanner
	ledger     StockLedger
	areas      AreaInventory
	dispatcher *worker.Dispatcher
}

func NewOrderCoordinator(
	cfg *config.Config,
	mesas repository.MesaRepository,
	sessions repository.SessionRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	history repository.HistoryRepository,
	resolver RecipeResolver,
	planner AllocationPlanner,
	ledger StockLedger,
	areas AreaInventory,
	dispatcher *worker.Dispatcher,
) OrderCoordinator {
	return &orderCoordinator{
		cfg:        cfg,
		mesas:      mesas,
		sessions:   sessions,
		orders:     orders,
		products:   products,
		history:    history,
		resolver:   resolver,
		planner:    planner,
		ledger:     ledger,
		areas:      areas,
		dispatcher: dispatcher,
	}
}

// requirementPlan pairs one resolved ingredient demand with its deduction plan.
type requirementPlan struct {
	req  IngredientRequirement
	plan []Allocation
}

// linePlan carries everything needed to commit one originally-requested line.
type linePlan struct {
	product *model.Product
	amount  decimal.Decimal
	plans   []requirementPlan
}

// firstAreaOrigin records the first source of the line's combined plan, the
// reversal heuristic stored on the item. Nil when the line was served from
// general stock.
func (lp *linePlan) firstAreaOrigin() *uuid.UUID {
	for _, rp := range lp.plans {
		if len(rp.plan) == 0 {
			continue
		}
		return rp.plan[0].Source.AreaID
	}
	return nil
}

func (s *orderCoordinator) PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (*dto.PlaceOrderResponse, error) {
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization_id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	var (
		resp    dto.PlaceOrderResponse
		touched []uuid.UUID
	)
	txErr := runTx(ctx, s.orders.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		// ── ValidateTable + ClaimSession ─────────────────────────────────
		// The mesa row lock serializes concurrent claims; the partial unique
		// index on open sessions is the storage-layer backstop.
		mesa, sess, err := s.claimSessionTx(tx, req.TableNumber, orgID, req.ClientToken)
		if err != nil {
			return err
		}

		// ── BuildPlans ───────────────────────────────────────────────────
		// All reads here lock the rows they touch, so the plans cannot be
		// invalidated by a concurrent deduction before Commit applies them.
		// One Reservations spans every line: later lines plan against what
		// earlier lines left, not the untouched snapshot.
		reserved := NewReservations()
		lines := make([]linePlan, 0, len(req.Items))
		for _, item := range req.Items {
			pid, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fmt.Errorf("invalid product_id: %w", err)
			}
			if !item.Amount.IsPositive() {
				return errors.New("item amount must be positive")
			}
			product, err := s.products.FindByID(ctx, pid)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductNotFoundError{ProductID: pid}
				}
				return err
			}
			reqs, err := s.resolver.Expand(ctx, product, item.Amount)
			if err != nil {
				return err
			}
			var preferred *uuid.UUID
			if item.PreferredAreaID != nil {
				aid, err := uuid.Parse(*item.PreferredAreaID)
				if err != nil {
					return fmt.Errorf("invalid preferred_area_id: %w", err)
				}
				preferred = &aid
			}
			lp := linePlan{product: product, amount: item.Amount}
			for _, r := range reqs {
				plan, err := s.planner.PlanTx(tx, product, r.IngredientID, r.Quantity, preferred, orgID, reserved)
				if err != nil {
					return err
				}
				lp.plans = append(lp.plans, requirementPlan{req: r, plan: plan})
			}
			lines = append(lines, lp)
		}

		// ── Commit ───────────────────────────────────────────────────────
		order := &model.Order{
			SessionID:      sess.ID,
			Status:         model.OrderFinalized,
			CustomerName:   req.CustomerName,
			OrganizationID: orgID,
		}
		for _, lp := range lines {
			order.Items = append(order.Items, model.Item{
				ProductID:    lp.product.ID,
				Amount:       lp.amount,
				AreaOriginID: lp.firstAreaOrigin(),
			})
		}
		if err := s.orders.CreateTx(tx, order); err != nil {
			return err
		}

		note := fmt.Sprintf("order %s", order.ID)
		for _, lp := range lines {
			for _, rp := range lp.plans {
				if err := applyRequirementPlanTx(tx, s.ledger, s.areas, s.history, rp, order.ID, orgID, note); err != nil {
					return err
				}
				touched = append(touched, rp.req.IngredientID)
			}
		}

		if mesa.Status != model.MesaOccupied {
			if err := s.mesas.UpdateStatusTx(tx, mesa.ID, model.MesaOccupied); err != nil {
				return err
			}
		}

		resp = dto.PlaceOrderResponse{
			OrderID:     order.ID.String(),
			SessionID:   sess.ID.String(),
			TableID:     mesa.ID.String(),
			ClientToken: req.ClientToken,
		}
		return nil
	})
	if txErr != nil {
		return nil, wrapTimeout("place order", txErr)
	}

	s.alertLowStock(context.WithoutCancel(ctx), orgID, touched)

	log.Info().
		Str("order_id", resp.OrderID).
		Str("session_id", resp.SessionID).
		Int("lines", len(req.Items)).
		Msg("order committed")
	return &resp, nil
}

// applyRequirementPlanTx applies one requirement's allocations in plan order,
// writing one exit audit entry per deduction. Shared by order placement and
// the quantity-increase path of the reversal engine.
func applyRequirementPlanTx(tx *gorm.DB, ledger StockLedger, areas AreaInventory, history repository.HistoryRepository, rp requirementPlan, refID, orgID uuid.UUID, note string) error {
	ref := refID
	for _, alloc := range rp.plan {
		entry := &model.StockHistory{
			Type:           model.HistoryExit,
			Quantity:       alloc.Quantity,
			ProductID:      rp.req.IngredientID,
			ReferenceID:    &ref,
			OrganizationID: orgID,
			Note:           note,
		}
		if alloc.Source.General() {
			deds, err := ledger.DeductTx(tx, rp.req.IngredientID, orgID, alloc.Quantity)
			if err != nil {
				return err
			}
			if rp.req.AffectsCost {
				entry.UnitPrice = WeightedUnitCost(deds)
			}
		} else {
			if err := areas.DeductTx(tx, *alloc.Source.AreaID, rp.req.IngredientID, orgID, alloc.Quantity); err != nil {
				return err
			}
			entry.AreaID = alloc.Source.AreaID
		}
		if err := history.CreateTx(tx, entry); err != nil {
			return err
		}
	}
	return nil
}

// claimSessionTx implements the check-and-create under the mesa row lock.
func (s *orderCoordinator) claimSessionTx(tx *gorm.DB, tableNumber int, orgID uuid.UUID, clientToken string) (*model.Mesa, *model.Session, error) {
	mesa, err := s.mesas.FindByNumberForUpdateTx(tx, tableNumber, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &TableNotFoundError{Number: tableNumber, OrganizationID: orgID}
		}
		return nil, nil, err
	}

	sess, err := s.sessions.FindOpenByMesaTx(tx, mesa.ID)
	switch {
	case err == nil:
		if sess.ClientToken != clientToken {
			return nil, nil, &SessionConflictError{
				SessionID:           sess.ID,
				MesaID:              mesa.ID,
				ExistingClientToken: sess.ClientToken,
			}
		}
		return mesa, sess, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sess = &model.Session{
			MesaID:         mesa.ID,
			ClientToken:    clientToken,
			Status:         model.SessionOpen,
			OrganizationID: orgID,
		}
		if err := s.sessions.CreateTx(tx, sess); err != nil {
			return nil, nil, err
		}
		return mesa, sess, nil
	default:
		return nil, nil, err
	}
}

func (s *orderCoordinator) VerifyOrClaimSession(ctx context.Context, req dto.ClaimSessionRequest) (*dto.SessionResponse, error) {
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization_id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	var resp dto.SessionResponse
	txErr := runTx(ctx, s.sessions.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		mesa, sess, err := s.claimSessionTx(tx, req.TableNumber, orgID, req.ClientToken)
		if err != nil {
			return err
		}
		if mesa.Status != model.MesaOccupied {
			if err := s.mesas.UpdateStatusTx(tx, mesa.ID, model.MesaOccupied); err != nil {
				return err
			}
		}
		resp = dto.SessionResponse{
			SessionID:   sess.ID.String(),
			TableID:     mesa.ID.String(),
			ClientToken: req.ClientToken,
		}
		return nil
	})
	if txErr != nil {
		return nil, wrapTimeout("claim session", txErr)
	}
	return &resp, nil
}

func (s *orderCoordinator) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	txErr := runTx(ctx, s.sessions.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		sess, err := s.sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.Status != model.SessionOpen {
			return nil // closing a closed session is a no-op
		}
		// Lock the mesa so the close does not interleave with a claim.
		mesa, err := s.mesas.FindByIDForUpdateTx(tx, sess.MesaID)
		if err != nil {
			return err
		}
		if err := s.sessions.CloseTx(tx, sess.ID); err != nil {
			return err
		}
		return s.mesas.UpdateStatusTx(tx, mesa.ID, model.MesaFree)
	})
	return wrapTimeout("close session", txErr)
}

// alertLowStock enqueues an alert for every touched product whose general
// availability fell below the threshold. Best-effort, after commit.
func (s *orderCoordinator) alertLowStock(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) {
	if s.dispatcher == nil || len(productIDs) == 0 {
		return
	}
	threshold := decimal.NewFromFloat(s.cfg.LowStockThreshold)
	seen := make(map[uuid.UUID]bool, len(productIDs))
	for _, pid := range productIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		avail, err := s.ledger.PeekAvailable(ctx, pid, orgID)
		if err != nil || avail.GreaterThanOrEqual(threshold) {
			continue
		}
		payload := worker.LowStockPayload{
			ProductID:      pid.String(),
			OrganizationID: orgID.String(),
			Available:      avail.String(),
			Threshold:      threshold.String(),
		}
		if err := s.dispatcher.EnqueueLowStock(ctx, payload); err != nil {
			log.Error().Err(err).Str("product_id", pid.String()).Msg("failed to enqueue low stock alert")
		}
	}
}
