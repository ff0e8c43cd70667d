package repository

import (
	"context"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MesaRepository resolves mesas and serializes session claims: the
// FindByNumberForUpdateTx lock is what orders concurrent claims on the same
// mesa.
type MesaRepository interface {
	FindByNumber(ctx context.Context, number int, orgID uuid.UUID) (*model.Mesa, error)
	// FindByNumberForUpdateTx locks the mesa row; concurrent claimants queue
	// here until the holder commits or rolls back.
	FindByNumberForUpdateTx(tx *gorm.DB, number int, orgID uuid.UUID) (*model.Mesa, error)
	// FindByIDForUpdateTx locks a mesa already resolved to its id (close flow).
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Mesa, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
}

type mesaRepo struct{ db *gorm.DB }

func NewMesaRepository(db *gorm.DB) MesaRepository { return &mesaRepo{db: db} }

func (r *mesaRepo) FindByNumber(ctx context.Context, number int, orgID uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := r.db.WithContext(ctx).
		Where("number = ? AND organization_id = ?", number, orgID).
		First(&m).Error
	return &m, err
}

func (r *mesaRepo) FindByNumberForUpdateTx(tx *gorm.DB, number int, orgID uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("number = ? AND organization_id = ?", number, orgID).
		First(&m).Error
	return &m, err
}

func (r *mesaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *mesaRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Mesa{}).Where("id = ?", id).Update("status", status).Error
}
