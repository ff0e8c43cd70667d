package service

import (
	"context"
	"sort"
	"time"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/config"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory stubs for every repository. Transactions run with a nil *gorm.DB
// (see runTx), so the stubs ignore the tx argument.

func testConfig() *config.Config {
	return &config.Config{
		LockTimeoutSeconds: 5,
		TxTimeoutSeconds:   10,
		LowStockThreshold:  5,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Products ──────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	recipes  map[uuid.UUID][]model.RecipeItem
	findErr  error // simulates a failing connection when set
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		recipes:  make(map[uuid.UUID][]model.RecipeItem),
	}
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.products[id]
	if !ok || !p.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindRecipe(_ context.Context, productID uuid.UUID) ([]model.RecipeItem, error) {
	return r.recipes[productID], nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) seed(name string, derived bool, defaultArea *uuid.UUID) *model.Product {
	p := &model.Product{
		ID:            uuid.New(),
		Name:          name,
		IsDerived:     derived,
		DefaultAreaID: defaultArea,
		Active:        true,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) seedRecipe(product *model.Product, lines ...model.RecipeItem) {
	for i := range lines {
		lines[i].ProductID = product.ID
	}
	r.recipes[product.ID] = lines
}

// ── Stock (general warehouse + lots) ─────────────────────────────────────────

type stubStockRepo struct {
	stocks map[uuid.UUID]*model.Stock // by product
	lots   []*model.Lot
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{stocks: make(map[uuid.UUID]*model.Stock)}
}

func (r *stubStockRepo) FindByProduct(_ context.Context, productID, _ uuid.UUID) (*model.Stock, error) {
	s, ok := r.stocks[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubStockRepo) FindByProductForUpdateTx(_ *gorm.DB, productID, _ uuid.UUID) (*model.Stock, error) {
	s, ok := r.stocks[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubStockRepo) AddQuantityTx(_ *gorm.DB, stockID uuid.UUID, delta decimal.Decimal) (int64, error) {
	for _, s := range r.stocks {
		if s.ID == stockID {
			next := s.TotalQuantity.Add(delta)
			if next.IsNegative() {
				return 0, nil
			}
			s.TotalQuantity = next
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubStockRepo) UpsertAddTx(_ *gorm.DB, productID, orgID uuid.UUID, quantity decimal.Decimal) error {
	if s, ok := r.stocks[productID]; ok {
		s.TotalQuantity = s.TotalQuantity.Add(quantity)
		return nil
	}
	r.stocks[productID] = &model.Stock{
		ID:             uuid.New(),
		ProductID:      productID,
		OrganizationID: orgID,
		TotalQuantity:  quantity,
	}
	return nil
}

func (r *stubStockRepo) ActiveLotsForUpdateTx(_ *gorm.DB, productID, _ uuid.UUID) ([]model.Lot, error) {
	var out []model.Lot
	for _, lot := range r.lots {
		if lot.ProductID == productID && lot.Active && lot.Quantity.IsPositive() {
			out = append(out, *lot)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PurchasedAt.Equal(out[j].PurchasedAt) {
			return out[i].PurchasedAt.Before(out[j].PurchasedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *stubStockRepo) CreateLotTx(_ *gorm.DB, lot *model.Lot) error {
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}
	lot.CreatedAt = time.Now()
	cp := *lot
	r.lots = append(r.lots, &cp)
	return nil
}

func (r *stubStockRepo) UpdateLotTx(_ *gorm.DB, lotID uuid.UUID, quantity decimal.Decimal, active bool) error {
	for _, lot := range r.lots {
		if lot.ID == lotID {
			lot.Quantity = quantity
			lot.Active = active
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockRepository = (*stubStockRepo)(nil)

// seedLot injects an active lot purchased at a fixed offset so FIFO order is
// deterministic.
func (r *stubStockRepo) seedLot(productID, orgID uuid.UUID, qty, unitCost string, purchasedDaysAgo int) *model.Lot {
	lot := &model.Lot{
		ID:             uuid.New(),
		ProductID:      productID,
		OrganizationID: orgID,
		Quantity:       dec(qty),
		UnitCost:       dec(unitCost),
		PurchasedAt:    time.Now().AddDate(0, 0, -purchasedDaysAgo),
		Active:         true,
		CreatedAt:      time.Now(),
	}
	r.lots = append(r.lots, lot)
	if s, ok := r.stocks[productID]; ok {
		s.TotalQuantity = s.TotalQuantity.Add(lot.Quantity)
	} else {
		r.stocks[productID] = &model.Stock{
			ID:             uuid.New(),
			ProductID:      productID,
			OrganizationID: orgID,
			TotalQuantity:  lot.Quantity,
		}
	}
	return lot
}

func (r *stubStockRepo) totalFor(productID uuid.UUID) decimal.Decimal {
	if s, ok := r.stocks[productID]; ok {
		return s.TotalQuantity
	}
	return decimal.Zero
}

func (r *stubStockRepo) activeLotSum(productID uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for _, lot := range r.lots {
		if lot.ProductID == productID && lot.Active {
			sum = sum.Add(lot.Quantity)
		}
	}
	return sum
}

// ── Areas ─────────────────────────────────────────────────────────────────────

type stubAreaRepo struct {
	areas  map[uuid.UUID]*model.Area
	stocks []*model.AreaStock
}

func newStubAreaRepo() *stubAreaRepo {
	return &stubAreaRepo{areas: make(map[uuid.UUID]*model.Area)}
}

func (r *stubAreaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Area, error) {
	a, ok := r.areas[id]
	if !ok || !a.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAreaRepo) findRow(areaID, productID uuid.UUID) *model.AreaStock {
	for _, row := range r.stocks {
		if row.AreaID == areaID && row.ProductID == productID {
			return row
		}
	}
	return nil
}

func (r *stubAreaRepo) FindAreaStock(_ context.Context, areaID, productID, _ uuid.UUID) (*model.AreaStock, error) {
	if row := r.findRow(areaID, productID); row != nil {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAreaRepo) FindAreaStockForUpdateTx(_ *gorm.DB, areaID, productID, _ uuid.UUID) (*model.AreaStock, error) {
	if row := r.findRow(areaID, productID); row != nil {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAreaRepo) listByProduct(productID uuid.UUID) []model.AreaStock {
	var out []model.AreaStock
	for _, row := range r.stocks {
		if row.ProductID == productID && row.Quantity.IsPositive() {
			out = append(out, *row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity.GreaterThan(out[j].Quantity)
	})
	return out
}

func (r *stubAreaRepo) ListByProduct(_ context.Context, productID, _ uuid.UUID) ([]model.AreaStock, error) {
	return r.listByProduct(productID), nil
}

func (r *stubAreaRepo) ListByProductForUpdateTx(_ *gorm.DB, productID, _ uuid.UUID) ([]model.AreaStock, error) {
	return r.listByProduct(productID), nil
}

func (r *stubAreaRepo) AddQuantityTx(_ *gorm.DB, areaStockID uuid.UUID, delta decimal.Decimal) (int64, error) {
	for _, row := range r.stocks {
		if row.ID == areaStockID {
			next := row.Quantity.Add(delta)
			if next.IsNegative() {
				return 0, nil
			}
			row.Quantity = next
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubAreaRepo) UpsertAddTx(_ *gorm.DB, areaID, productID, orgID uuid.UUID, quantity decimal.Decimal) error {
	if row := r.findRow(areaID, productID); row != nil {
		row.Quantity = row.Quantity.Add(quantity)
		return nil
	}
	r.stocks = append(r.stocks, &model.AreaStock{
		ID:             uuid.New(),
		AreaID:         areaID,
		ProductID:      productID,
		OrganizationID: orgID,
		Quantity:       quantity,
	})
	return nil
}

var _ repository.AreaRepository = (*stubAreaRepo)(nil)

func (r *stubAreaRepo) seedArea(name string) *model.Area {
	a := &model.Area{ID: uuid.New(), Name: name, Active: true}
	r.areas[a.ID] = a
	return a
}

func (r *stubAreaRepo) seedStock(areaID, productID, orgID uuid.UUID, qty string) *model.AreaStock {
	row := &model.AreaStock{
		ID:             uuid.New(),
		AreaID:         areaID,
		ProductID:      productID,
		OrganizationID: orgID,
		Quantity:       dec(qty),
	}
	r.stocks = append(r.stocks, row)
	return row
}

func (r *stubAreaRepo) quantityAt(areaID, productID uuid.UUID) decimal.Decimal {
	if row := r.findRow(areaID, productID); row != nil {
		return row.Quantity
	}
	return decimal.Zero
}

// ── Mesas ─────────────────────────────────────────────────────────────────────

type stubMesaRepo struct {
	mesas map[uuid.UUID]*model.Mesa
}

func newStubMesaRepo() *stubMesaRepo {
	return &stubMesaRepo{mesas: make(map[uuid.UUID]*model.Mesa)}
}

func (r *stubMesaRepo) findByNumber(number int) (*model.Mesa, error) {
	for _, m := range r.mesas {
		if m.Number == number {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMesaRepo) FindByNumber(_ context.Context, number int, _ uuid.UUID) (*model.Mesa, error) {
	return r.findByNumber(number)
}

func (r *stubMesaRepo) FindByNumberForUpdateTx(_ *gorm.DB, number int, _ uuid.UUID) (*model.Mesa, error) {
	return r.findByNumber(number)
}

func (r *stubMesaRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Mesa, error) {
	m, ok := r.mesas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMesaRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	m, ok := r.mesas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Status = status
	return nil
}

var _ repository.MesaRepository = (*stubMesaRepo)(nil)

func (r *stubMesaRepo) seed(number int, orgID uuid.UUID) *model.Mesa {
	m := &model.Mesa{ID: uuid.New(), Number: number, Status: model.MesaFree, OrganizationID: orgID}
	r.mesas[m.ID] = m
	return m
}

// ── Sessions ──────────────────────────────────────────────────────────────────

type stubSessionRepo struct {
	sessions map[uuid.UUID]*model.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}
}

func (r *stubSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSessionRepo) FindOpenByMesaTx(_ *gorm.DB, mesaID uuid.UUID) (*model.Session, error) {
	for _, s := range r.sessions {
		if s.MesaID == mesaID && s.Status == model.SessionOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSessionRepo) CreateTx(_ *gorm.DB, s *model.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *stubSessionRepo) CloseTx(_ *gorm.DB, id uuid.UUID) error {
	s, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if s.Status == model.SessionOpen {
		now := time.Now()
		s.Status = model.SessionClosed
		s.ClosedAt = &now
	}
	return nil
}

func (r *stubSessionRepo) DB() *gorm.DB { return nil }

var _ repository.SessionRepository = (*stubSessionRepo)(nil)

// ── Orders ────────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	items  map[uuid.UUID]*model.Item
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders: make(map[uuid.UUID]*model.Order),
		items:  make(map[uuid.UUID]*model.Item),
	}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
		r.items[o.Items[i].ID] = &o.Items[i]
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return it, nil
}

func (r *stubOrderRepo) FindItemByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return it, nil
}

func (r *stubOrderRepo) MarkItemCanceledTx(_ *gorm.DB, id uuid.UUID) error {
	it, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Canceled = true
	return nil
}

func (r *stubOrderRepo) UpdateItemAmountTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	it, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Amount = amount
	return nil
}

func (r *stubOrderRepo) CountRemainingItems(_ context.Context, orderID uuid.UUID) (int64, error) {
	var n int64
	for _, it := range r.items {
		if it.OrderID == orderID && !it.Canceled {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── History ───────────────────────────────────────────────────────────────────

type stubHistoryRepo struct {
	entries []model.StockHistory
}

func (r *stubHistoryRepo) CreateTx(_ *gorm.DB, h *model.StockHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = time.Now()
	r.entries = append(r.entries, *h)
	return nil
}

func (r *stubHistoryRepo) byReference(referenceID uuid.UUID) []model.StockHistory {
	var out []model.StockHistory
	for _, e := range r.entries {
		if e.ReferenceID != nil && *e.ReferenceID == referenceID {
			out = append(out, e)
		}
	}
	return out
}

func (r *stubHistoryRepo) ListByReference(_ context.Context, referenceID uuid.UUID) ([]model.StockHistory, error) {
	return r.byReference(referenceID), nil
}

func (r *stubHistoryRepo) ListByReferenceTx(_ *gorm.DB, referenceID uuid.UUID) ([]model.StockHistory, error) {
	return r.byReference(referenceID), nil
}

func (r *stubHistoryRepo) ListByProduct(_ context.Context, productID, _ uuid.UUID, page, limit int) ([]model.StockHistory, int64, error) {
	var out []model.StockHistory
	for _, e := range r.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

var _ repository.HistoryRepository = (*stubHistoryRepo)(nil)
