package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockHistory entry types.
const (
	HistoryEntrance   = "entrance"
	HistoryExit       = "exit"
	HistoryTransfer   = "transfer"
	HistoryAdjustment = "adjustment"
)

// StockHistory is the append-only audit trail of every stock movement.
// Entries are NEVER modified or deleted — reversals re-read the referenced
// order/item and write inverse entries. Quantity is always positive; the
// direction is carried by Type.
type StockHistory struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type           string          `gorm:"type:varchar(20);not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid;index"`
	AreaID         *uuid.UUID      `gorm:"type:uuid"`
	Note           string
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockHistory) TableName() string { return "stock_histories" }
