package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values.
const (
	OrderDraft     = "draft"
	OrderFinalized = "finalized"
	OrderCanceled  = "canceled"
)

// Order groups the items requested in one placement and belongs to exactly
// one Session.
type Order struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Status         string    `gorm:"type:varchar(20);not null;default:'draft'"`
	Served         bool      `gorm:"not null;default:false"`
	CustomerName   string
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Session *Session `gorm:"foreignKey:SessionID"`
	Items   []Item   `gorm:"foreignKey:OrderID"`
}

// Item is one order line. AreaOriginID records the first allocation source of
// the line's deduction plan so that a reversal can prefer returning stock to
// where it came from. Nil means the line was served from general stock only.
type Item struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Prepared     bool            `gorm:"not null;default:false"`
	Canceled     bool            `gorm:"not null;default:false"`
	AreaOriginID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
