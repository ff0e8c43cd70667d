package repository

import (
	"context"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is the read-only data access contract for catalog data.
// Products and recipes are owned by catalog management; the engine never
// mutates them. Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via stubs.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindRecipe returns the bill-of-materials lines of a derived product.
	FindRecipe(ctx context.Context, productID uuid.UUID) ([]model.RecipeItem, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("active = true").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindRecipe(ctx context.Context, productID uuid.UUID) ([]model.RecipeItem, error) {
	var lines []model.RecipeItem
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("ingredient_id ASC").Find(&lines).Error
	return lines, err
}
