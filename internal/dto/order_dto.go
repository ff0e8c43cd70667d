package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID       string          `json:"product_id"        validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"            validate:"required"`
	PreferredAreaID *string         `json:"preferred_area_id" validate:"omitempty,uuid"`
}

type PlaceOrderRequest struct {
	TableNumber    int                `json:"table_number"    validate:"required,min=1"`
	OrganizationID string             `json:"organization_id" validate:"required,uuid"`
	ClientToken    string             `json:"client_token"    validate:"required,min=1"`
	CustomerName   string             `json:"customer_name"`
	Items          []OrderItemRequest `json:"items"           validate:"required,min=1,dive"`
}

type CancelItemRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type AdjustQuantityRequest struct {
	NewQuantity decimal.Decimal `json:"new_quantity" validate:"required"`
	Reason      string          `json:"reason"       validate:"required,min=3"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PlaceOrderResponse struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	TableID     string `json:"table_id"`
	ClientToken string `json:"client_token"`
}

type CancelItemResponse struct {
	OrderID            string `json:"order_id"`
	RemainingItemCount int64  `json:"remaining_item_count"`
}

type AdjustQuantityResponse struct {
	OrderID          string          `json:"order_id"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
}

type CancelOrderResponse struct {
	ItemsCanceled int `json:"items_canceled"`
	ItemsReturned int `json:"items_returned"`
}
