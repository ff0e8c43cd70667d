package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ReplenishStockRequest struct {
	ProductID      string          `json:"product_id"      validate:"required,uuid"`
	OrganizationID string          `json:"organization_id" validate:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity"        validate:"required"`
	UnitCost       decimal.Decimal `json:"unit_cost"       validate:"min=0"`
	UnitSaleCost   decimal.Decimal `json:"unit_sale_cost"  validate:"min=0"`
}

type AreaTransferRequest struct {
	ProductID      string          `json:"product_id"      validate:"required,uuid"`
	OrganizationID string          `json:"organization_id" validate:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity"        validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReplenishStockResponse struct {
	LotID         string          `json:"lot_id"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

type AreaAvailability struct {
	AreaID   string          `json:"area_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

type AvailabilityResponse struct {
	ProductID string             `json:"product_id"`
	General   decimal.Decimal    `json:"general"`
	Areas     []AreaAvailability `json:"areas"`
	Total     decimal.Decimal    `json:"total"`
}

type HistoryEntry struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	AreaID    *string         `json:"area_id,omitempty"`
	Reference *string         `json:"reference_id,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type HistoryResponse struct {
	Data  []HistoryEntry `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type HistoryFilter struct {
	OrganizationID string `form:"organization_id" validate:"required,uuid"`
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=50" validate:"min=1,max=200"`
}
