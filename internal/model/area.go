package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Area is a physical stock location distinct from the general warehouse
// (kitchen station, bar, etc.).
type Area struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"not null"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Active         bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AreaStock is the per-area reserve of one product (the "economato").
// One row per (product, area, organization); quantity never negative.
type AreaStock struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_area_stock;not null"`
	AreaID         uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_area_stock;not null"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_area_stock;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Area    *Area    `gorm:"foreignKey:AreaID"`
	Product *Product `gorm:"foreignKey:ProductID"`
}

func (AreaStock) TableName() string { return "area_stocks" }
