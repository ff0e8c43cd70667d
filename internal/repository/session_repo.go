package repository

import (
	"context"
	"time"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository owns client sessions. The open-session lookup and the
// create both run under the mesa row lock taken by the caller.
type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	// FindOpenByMesaTx returns the open session of a mesa, if any.
	FindOpenByMesaTx(tx *gorm.DB, mesaID uuid.UUID) (*model.Session, error)
	CreateTx(tx *gorm.DB, s *model.Session) error
	CloseTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).Preload("Mesa").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sessionRepo) FindOpenByMesaTx(tx *gorm.DB, mesaID uuid.UUID) (*model.Session, error) {
	var s model.Session
	err := tx.Where("mesa_id = ? AND status = ?", mesaID, model.SessionOpen).First(&s).Error
	return &s, err
}

func (r *sessionRepo) CreateTx(tx *gorm.DB, s *model.Session) error {
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now()
	}
	return tx.Create(s).Error
}

func (r *sessionRepo) CloseTx(tx *gorm.DB, id uuid.UUID) error {
	now := time.Now()
	return tx.Model(&model.Session{}).Where("id = ? AND status = ?", id, model.SessionOpen).
		Updates(map[string]interface{}{"status": model.SessionClosed, "closed_at": &now}).Error
}

func (r *sessionRepo) DB() *gorm.DB { return r.db }
