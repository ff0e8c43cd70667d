package model

import (
	"time"

	"github.com/google/uuid"
)

// Session status values.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// Session is one continuous occupation of a mesa by one client, identified by
// an opaque ClientToken. At most one open session may exist per mesa — the
// partial unique index below is the storage-layer backstop for the claim
// serialization done with row locks (see OrderCoordinator).
type Session struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MesaID         uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_open,where:status = 'open',unique"`
	ClientToken    string    `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);not null;default:'open'"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	OpenedAt       time.Time `gorm:"not null"`
	ClosedAt       *time.Time

	Mesa   *Mesa   `gorm:"foreignKey:MesaID"`
	Orders []Order `gorm:"foreignKey:SessionID"`
}
