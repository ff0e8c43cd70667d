package service

import (
	"context"
	"testing"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/dto"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reversalFixture struct {
	*coordinatorFixture
	reversals ReversalEngine
}

func newReversalFixture() *reversalFixture {
	f := newCoordinatorFixture()
	ledger := NewStockLedger(f.stocks)
	areas := NewAreaInventory(f.areas)
	return &reversalFixture{
		coordinatorFixture: f,
		reversals: NewReversalEngine(
			testConfig(), f.orders, f.products, f.history,
			NewRecipeResolver(f.products), NewAllocationPlanner(areas, ledger),
			ledger, areas,
		),
	}
}

// placeBeerOrder seeds a mesa, an area-backed product, and places one order
// line of the given amount. Returns the order's single item.
func (f *reversalFixture) placeBeerOrder(t *testing.T, areaQty, generalQty, amount string) (*model.Product, *model.Area, *model.Item) {
	t.Helper()
	bar := f.areas.seedArea("bar")
	beer := f.products.seed("beer", false, &bar.ID)
	f.areas.seedStock(bar.ID, beer.ID, f.orgID, areaQty)
	f.stocks.seedLot(beer.ID, f.orgID, generalQty, "1.50", 1)
	f.mesas.seed(1, f.orgID)

	resp, err := f.placeOrder(1, "tok", dto.OrderItemRequest{ProductID: beer.ID.String(), Amount: dec(amount)})
	require.NoError(t, err)
	order, err := f.orders.FindByID(context.Background(), uuid.MustParse(resp.OrderID))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	return beer, bar, &order.Items[0]
}

func TestReturnItem_RestoresAreaAndGeneral(t *testing.T) {
	f := newReversalFixture()
	beer, bar, item := f.placeBeerOrder(t, "4", "20", "10")

	// After placement: area 0, general 14.
	resp, err := f.reversals.ReturnItem(context.Background(), item.ID, "customer changed mind")
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.RemainingItemCount)

	// The area got back exactly what it contributed; the rest re-entered
	// general stock as a new lot priced at the original exit cost.
	assert.Equal(t, "4", f.areas.quantityAt(bar.ID, beer.ID).String())
	assert.Equal(t, "20", f.stocks.totalFor(beer.ID).String())
	assert.Equal(t, f.stocks.activeLotSum(beer.ID).String(), f.stocks.totalFor(beer.ID).String())

	returned := f.stocks.lots[len(f.stocks.lots)-1]
	assert.Equal(t, "6", returned.Quantity.String())
	assert.Equal(t, "1.5", returned.UnitCost.String())

	assert.True(t, item.Canceled)
}

func TestReturnItem_SecondCallIsRejected(t *testing.T) {
	f := newReversalFixture()
	_, _, item := f.placeBeerOrder(t, "4", "20", "10")

	_, err := f.reversals.ReturnItem(context.Background(), item.ID, "first")
	require.NoError(t, err)

	_, err = f.reversals.ReturnItem(context.Background(), item.ID, "second")
	var already *AlreadyCanceledError
	require.ErrorAs(t, err, &already)

	// Stock credited once, not twice.
	beer := item.ProductID
	assert.Equal(t, "20", f.stocks.totalFor(beer).String())
}

func TestReturnItem_PreparedIsRejected(t *testing.T) {
	f := newReversalFixture()
	beer, bar, item := f.placeBeerOrder(t, "4", "20", "10")
	item.Prepared = true

	_, err := f.reversals.ReturnItem(context.Background(), item.ID, "too late")
	var prepared *AlreadyPreparedError
	require.ErrorAs(t, err, &prepared)

	// Nothing moved back.
	assert.Equal(t, "0", f.areas.quantityAt(bar.ID, beer.ID).String())
	assert.Equal(t, "14", f.stocks.totalFor(beer.ID).String())
	assert.False(t, item.Canceled)
}

func TestReturnOrder_RejectedWhenAnyItemPrepared(t *testing.T) {
	f := newReversalFixture()
	beer := f.products.seed("beer", false, nil)
	water := f.products.seed("water", false, nil)
	f.stocks.seedLot(beer.ID, f.orgID, "20", "1.00", 1)
	f.stocks.seedLot(water.ID, f.orgID, "20", "0.50", 1)
	f.mesas.seed(2, f.orgID)

	resp, err := f.placeOrder(2, "tok",
		dto.OrderItemRequest{ProductID: beer.ID.String(), Amount: dec("2")},
		dto.OrderItemRequest{ProductID: water.ID.String(), Amount: dec("3")},
	)
	require.NoError(t, err)
	orderID := uuid.MustParse(resp.OrderID)
	order := f.orders.orders[orderID]
	order.Items[1].Prepared = true

	_, err = f.reversals.ReturnOrder(context.Background(), orderID, "wrong table")
	var cannotCancel *CannotCancelPreparedItemsError
	require.ErrorAs(t, err, &cannotCancel)
	assert.Equal(t, 1, cannotCancel.PreparedCount)

	// All-or-nothing: the unprepared item was not returned either.
	assert.Equal(t, "18", f.stocks.totalFor(beer.ID).String())
	assert.Equal(t, "17", f.stocks.totalFor(water.ID).String())
	assert.Equal(t, model.OrderFinalized, order.Status)
}

func TestReturnOrder_CancelsAllItemsAndRestoresStock(t *testing.T) {
	f := newReversalFixture()
	beer := f.products.seed("beer", false, nil)
	water := f.products.seed("water", false, nil)
	f.stocks.seedLot(beer.ID, f.orgID, "20", "1.00", 1)
	f.stocks.seedLot(water.ID, f.orgID, "20", "0.50", 1)
	f.mesas.seed(3, f.orgID)

	resp, err := f.placeOrder(3, "tok",
		dto.OrderItemRequest{ProductID: beer.ID.String(), Amount: dec("2")},
		dto.OrderItemRequest{ProductID: water.ID.String(), Amount: dec("3")},
	)
	require.NoError(t, err)
	orderID := uuid.MustParse(resp.OrderID)

	result, err := f.reversals.ReturnOrder(context.Background(), orderID, "wrong table")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ItemsCanceled)
	assert.Equal(t, 2, result.ItemsReturned)

	assert.Equal(t, "20", f.stocks.totalFor(beer.ID).String())
	assert.Equal(t, "20", f.stocks.totalFor(water.ID).String())
	assert.Equal(t, model.OrderCanceled, f.orders.orders[orderID].Status)
	for _, it := range f.orders.orders[orderID].Items {
		assert.True(t, it.Canceled)
	}
}

func TestReturnOrder_SkipsAlreadyCanceledItems(t *testing.T) {
	f := newReversalFixture()
	beer, _, item := f.placeBeerOrder(t, "0", "20", "5")

	_, err := f.reversals.ReturnItem(context.Background(), item.ID, "partial first")
	require.NoError(t, err)
	assert.Equal(t, "20", f.stocks.totalFor(beer.ID).String())

	result, err := f.reversals.ReturnOrder(context.Background(), item.OrderID, "cancel the rest")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsCanceled)
	// No double credit.
	assert.Equal(t, "20", f.stocks.totalFor(beer.ID).String())
}

func TestAdjustQuantity_DecreaseReturnsDelta(t *testing.T) {
	f := newReversalFixture()
	beer, bar, item := f.placeBeerOrder(t, "4", "20", "10")

	resp, err := f.reversals.AdjustQuantity(context.Background(), item.ID, dec("6"), "over-ordered")
	require.NoError(t, err)
	assert.Equal(t, "10", resp.PreviousQuantity.String())
	assert.Equal(t, "6", resp.NewQuantity.String())
	assert.Equal(t, "6", item.Amount.String())

	// The 4-unit delta flows back to the origin area first.
	assert.Equal(t, "4", f.areas.quantityAt(bar.ID, beer.ID).String())
	assert.Equal(t, "14", f.stocks.totalFor(beer.ID).String())
}

func TestAdjustQuantity_IncreaseAllocatesDelta(t *testing.T) {
	f := newReversalFixture()
	beer, bar, item := f.placeBeerOrder(t, "10", "20", "4")

	// After placement the bar still holds 6.
	resp, err := f.reversals.AdjustQuantity(context.Background(), item.ID, dec("9"), "another round")
	require.NoError(t, err)
	assert.Equal(t, "9", resp.NewQuantity.String())
	assert.Equal(t, "9", item.Amount.String())

	// The extra 5 came from the recorded origin area.
	assert.Equal(t, "1", f.areas.quantityAt(bar.ID, beer.ID).String())
	assert.Equal(t, "20", f.stocks.totalFor(beer.ID).String())
}

func TestAdjustQuantity_SameQuantityIsNoOp(t *testing.T) {
	f := newReversalFixture()
	beer, _, item := f.placeBeerOrder(t, "0", "20", "5")
	before := len(f.history.entries)

	_, err := f.reversals.AdjustQuantity(context.Background(), item.ID, dec("5"), "no change")
	require.NoError(t, err)
	assert.Equal(t, "15", f.stocks.totalFor(beer.ID).String())
	assert.Len(t, f.history.entries, before)
}

func TestAdjustQuantity_RejectsNonPositive(t *testing.T) {
	f := newReversalFixture()
	_, _, item := f.placeBeerOrder(t, "0", "20", "5")

	_, err := f.reversals.AdjustQuantity(context.Background(), item.ID, dec("0"), "bad input")
	require.Error(t, err)

	_, err = f.reversals.AdjustQuantity(context.Background(), item.ID, dec("-2"), "bad input")
	require.Error(t, err)
}

func TestAdjustQuantity_InsufficientStockLeavesItemUntouched(t *testing.T) {
	f := newReversalFixture()
	beer, _, item := f.placeBeerOrder(t, "0", "6", "5")

	// Only 1 left in general; raising to 8 needs 3 more.
	_, err := f.reversals.AdjustQuantity(context.Background(), item.ID, dec("8"), "big group")
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	assert.Equal(t, "5", item.Amount.String())
	assert.Equal(t, "1", f.stocks.totalFor(beer.ID).String())
}
