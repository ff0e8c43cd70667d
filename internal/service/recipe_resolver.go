package service

import (
	"context"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngredientRequirement is one resolved stock demand: the ordered quantity of
// a line, translated to ingredient level and scaled.
type IngredientRequirement struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	AffectsCost  bool
}

// RecipeResolver expands derived (composite) products into their
// bill-of-materials requirements.
type RecipeResolver interface {
	// Expand scales each recipe line by orderedQuantity. Non-derived
	// products expand to themselves with the ordered quantity.
	Expand(ctx context.Context, product *model.Product, orderedQuantity decimal.Decimal) ([]IngredientRequirement, error)
}

type recipeResolver struct {
	products repository.ProductRepository
}

func NewRecipeResolver(products repository.ProductRepository) RecipeResolver {
	return &recipeResolver{products: products}
}

func (s *recipeResolver) Expand(ctx context.Context, product *model.Product, orderedQuantity decimal.Decimal) ([]IngredientRequirement, error) {
	if !product.IsDerived {
		return []IngredientRequirement{{
			IngredientID: product.ID,
			Quantity:     orderedQuantity,
			AffectsCost:  true,
		}}, nil
	}

	lines, err := s.products.FindRecipe(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	// A derived product without recipe lines is broken catalog data, not a
	// stock shortage.
	if len(lines) == 0 {
		return nil, &RecipeNotFoundError{ProductID: product.ID}
	}

	reqs := make([]IngredientRequirement, 0, len(lines))
	for _, line := range lines {
		reqs = append(reqs, IngredientRequirement{
			IngredientID: line.IngredientID,
			Quantity:     line.QuantityPerUnit.Mul(orderedQuantity),
			AffectsCost:  line.AffectsCost,
		})
	}
	return reqs, nil
}
