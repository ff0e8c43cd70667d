package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is the general-warehouse aggregate for one product in one
// organization. Exactly one row exists per (product, organization); the
// unique index makes the 1:1 relation explicit instead of relying on
// "first matching row" lookups.
//
// Invariant: TotalQuantity equals the sum of active lot quantities for the
// same product/organization, and never goes negative.
type Stock struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_stock_product_org;not null"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_stock_product_org;not null"`
	TotalQuantity  decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (Stock) TableName() string { return "stocks" }

// Lot is a purchase batch carrying its own cost. Lots are consumed
// oldest-purchase-first and are NEVER deleted — a lot whose quantity reaches
// zero is deactivated and kept as the historical cost record.
type Lot struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_lots_fifo"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_lots_fifo"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UnitSaleCost   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	PurchasedAt    time.Time       `gorm:"not null;index:idx_lots_fifo"`
	Active         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
}

func (Lot) TableName() string { return "lots" }
