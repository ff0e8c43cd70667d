package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The engine surfaces a closed set of typed error variants. Each variant
// carries a fixed payload so the transport boundary can map it exhaustively
// (errors.As) instead of string-matching on messages.

// TableNotFoundError: the requested mesa does not exist for the organization.
type TableNotFoundError struct {
	Number         int
	OrganizationID uuid.UUID
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("mesa %d not found", e.Number)
}

// ProductNotFoundError: a referenced product is absent or inactive.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// RecipeNotFoundError: a product is flagged derived but has zero recipe
// lines. Treated as a data-integrity problem in the catalog, not a stock
// shortage.
type RecipeNotFoundError struct {
	ProductID uuid.UUID
}

func (e *RecipeNotFoundError) Error() string {
	return fmt.Sprintf("derived product %s has no recipe", e.ProductID)
}

// SessionConflictError: the mesa is already claimed by a different client
// token. Carries the existing session so the caller can offer a join flow.
type SessionConflictError struct {
	SessionID           uuid.UUID
	MesaID              uuid.UUID
	ExistingClientToken string
}

func (e *SessionConflictError) Error() string {
	return fmt.Sprintf("mesa %s already has an open session for another client", e.MesaID)
}

// InsufficientStockError: required quantity exceeds combined area + general
// availability. No partial allocation is ever applied.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: required %s, available %s",
		e.ProductID, e.Required, e.Available)
}

// AlreadyCanceledError: reversal requested for an item already canceled.
type AlreadyCanceledError struct {
	ItemID uuid.UUID
}

func (e *AlreadyCanceledError) Error() string {
	return fmt.Sprintf("item %s is already canceled", e.ItemID)
}

// AlreadyPreparedError: prepared items cannot be reversed.
type AlreadyPreparedError struct {
	ItemID uuid.UUID
}

func (e *AlreadyPreparedError) Error() string {
	return fmt.Sprintf("item %s is already prepared and cannot be returned", e.ItemID)
}

// CannotCancelPreparedItemsError: order-level cancellation rejected because
// at least one item is prepared. Partial cancellation of a mixed order is
// not supported.
type CannotCancelPreparedItemsError struct {
	OrderID       uuid.UUID
	PreparedCount int
}

func (e *CannotCancelPreparedItemsError) Error() string {
	return fmt.Sprintf("order %s has %d prepared item(s) and cannot be canceled", e.OrderID, e.PreparedCount)
}

// TransactionTimeoutError: a lock wait or the whole transaction exceeded its
// configured bound. The transaction was rolled back; the caller may retry.
type TransactionTimeoutError struct {
	Op string
}

func (e *TransactionTimeoutError) Error() string {
	return fmt.Sprintf("transaction timed out during %s", e.Op)
}

// DataIntegrityError: an invariant violation was detected mid-transaction
// (e.g. a deduction would drive a balance negative). Always aborts, never
// silently clamps.
type DataIntegrityError struct {
	Detail string
}

func (e *DataIntegrityError) Error() string {
	return "data integrity violation: " + e.Detail
}

// Kind returns the machine-readable variant name for a domain error, or ""
// when err is not one of the engine's variants.
func Kind(err error) string {
	switch {
	case isAs[*TableNotFoundError](err):
		return "table_not_found"
	case isAs[*ProductNotFoundError](err):
		return "product_not_found"
	case isAs[*RecipeNotFoundError](err):
		return "recipe_not_found"
	case isAs[*SessionConflictError](err):
		return "session_conflict"
	case isAs[*InsufficientStockError](err):
		return "insufficient_stock"
	case isAs[*AlreadyCanceledError](err):
		return "already_canceled"
	case isAs[*AlreadyPreparedError](err):
		return "already_prepared"
	case isAs[*CannotCancelPreparedItemsError](err):
		return "cannot_cancel_prepared_items"
	case isAs[*TransactionTimeoutError](err):
		return "transaction_timeout"
	case isAs[*DataIntegrityError](err):
		return "data_integrity"
	default:
		return ""
	}
}

func isAs[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
