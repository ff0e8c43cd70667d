package model

import (
	"time"

	"github.com/google/uuid"
)

// Mesa status values.
const (
	MesaFree     = "free"
	MesaOccupied = "occupied"
)

// Mesa is a physical table. Status tracks occupation; the authoritative
// mutual-exclusion record is the open Session, not this flag.
type Mesa struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number         int       `gorm:"uniqueIndex:idx_mesa_number_org;not null"`
	Status         string    `gorm:"type:varchar(20);not null;default:'free'"`
	OrganizationID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_mesa_number_org;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Mesa) TableName() string { return "mesas" }
