package service

import (
	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationSource is a tagged union over the two stock sources: a specific
// area reserve, or the general warehouse (AreaID nil).
type AllocationSource struct {
	AreaID *uuid.UUID
}

// General reports whether the source is the general warehouse.
func (s AllocationSource) General() bool { return s.AreaID == nil }

// Allocation is one (source, quantity) step of a deduction plan.
type Allocation struct {
	Source   AllocationSource
	Quantity decimal.Decimal
}

type reservationKey struct {
	areaID       uuid.UUID // uuid.Nil for the general warehouse
	ingredientID uuid.UUID
}

// Reservations accumulates the quantities earlier plans of the same request
// already claimed per (source, ingredient). Plans built against one
// Reservations see net availability, so two lines of the same product (or
// two recipes sharing an ingredient) cannot both be promised the same stock.
// A nil *Reservations behaves as empty and records nothing.
type Reservations struct {
	claimed map[reservationKey]decimal.Decimal
}

func NewReservations() *Reservations {
	return &Reservations{claimed: make(map[reservationKey]decimal.Decimal)}
}

func reservationKeyFor(areaID *uuid.UUID, ingredientID uuid.UUID) reservationKey {
	k := reservationKey{ingredientID: ingredientID}
	if areaID != nil {
		k.areaID = *areaID
	}
	return k
}

func (r *Reservations) claimedFor(areaID *uuid.UUID, ingredientID uuid.UUID) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return r.claimed[reservationKeyFor(areaID, ingredientID)]
}

func (r *Reservations) record(areaID *uuid.UUID, ingredientID uuid.UUID, qty decimal.Decimal) {
	if r == nil {
		return
	}
	k := reservationKeyFor(areaID, ingredientID)
	r.claimed[k] = r.claimed[k].Add(qty)
}

// AllocationPlanner decides where a required quantity comes from. A plan is a
// pure computation over the snapshots read inside the caller's transaction —
// the coordinator applies it; the planner mutates nothing.
type AllocationPlanner interface {
	// PlanTx returns an ordered list of allocations summing exactly to
	// required, or an InsufficientStockError carrying required vs. available.
	// Precedence: the caller's explicit preferred area wins over the
	// product's default area; other areas follow in descending availability;
	// general stock absorbs the remainder. For a derived line the ordered
	// dish's default area governs every ingredient of its recipe.
	// Each availability read is reduced by what reserved already claimed,
	// and the returned plan is recorded into it.
	PlanTx(tx *gorm.DB, product *model.Product, ingredientID uuid.UUID, required decimal.Decimal, preferredAreaID *uuid.UUID, orgID uuid.UUID, reserved *Reservations) ([]Allocation, error)
}

type allocationPlanner struct {
	areas  AreaInventory
	ledger StockLedger
}

func NewAllocationPlanner(areas AreaInventory, ledger StockLedger) AllocationPlanner {
	return &allocationPlanner{areas: areas, ledger: ledger}
}

func (p *allocationPlanner) PlanTx(tx *gorm.DB, product *model.Product, ingredientID uuid.UUID, required decimal.Decimal, preferredAreaID *uuid.UUID, orgID uuid.UUID, reserved *Reservations) ([]Allocation, error) {
	remaining := required
	var plan []Allocation

	// 1. Primary area: explicit preference first, product default second.
	primary := preferredAreaID
	if primary == nil && product.DefaultAreaID != nil {
		primary = product.DefaultAreaID
	}
	if primary != nil {
		avail, err := p.areas.AvailableTx(tx, *primary, ingredientID, orgID)
		if err != nil {
			return nil, err
		}
		avail = avail.Sub(reserved.claimedFor(primary, ingredientID))
		take := decimal.Min(avail, remaining)
		if take.IsPositive() {
			areaID := *primary
			plan = append(plan, Allocation{Source: AllocationSource{AreaID: &areaID}, Quantity: take})
			reserved.record(&areaID, ingredientID, take)
			remaining = remaining.Sub(take)
		}
	}

	// 2. Other areas holding this ingredient, largest reserve first.
	if remaining.IsPositive() {
		holdings, err := p.areas.HoldingsTx(tx, ingredientID, orgID)
		if err != nil {
			return nil, err
		}
		for _, h := range holdings {
			if !remaining.IsPositive() {
				break
			}
			if primary != nil && h.AreaID == *primary {
				continue
			}
			avail := h.Quantity.Sub(reserved.claimedFor(&h.AreaID, ingredientID))
			take := decimal.Min(avail, remaining)
			if !take.IsPositive() {
				continue
			}
			areaID := h.AreaID
			plan = append(plan, Allocation{Source: AllocationSource{AreaID: &areaID}, Quantity: take})
			reserved.record(&areaID, ingredientID, take)
			remaining = remaining.Sub(take)
		}
	}

	// 3. General warehouse absorbs the remainder.
	if remaining.IsPositive() {
		general, err := p.ledger.AvailableTx(tx, ingredientID, orgID)
		if err != nil {
			return nil, err
		}
		general = general.Sub(reserved.claimedFor(nil, ingredientID))
		if general.LessThan(remaining) {
			// 4. Combined availability is short: report the total the caller
			// could have had, and return no partial plan.
			return nil, &InsufficientStockError{
				ProductID: ingredientID,
				Required:  required,
				Available: required.Sub(remaining).Add(decimal.Max(general, decimal.Zero)),
			}
		}
		plan = append(plan, Allocation{Source: AllocationSource{}, Quantity: remaining})
		reserved.record(nil, ingredientID, remaining)
	}

	return plan, nil
}
