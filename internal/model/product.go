package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is catalog data owned by an external management module.
// The engine reads it to decide allocation: IsDerived products consume
// ingredient stock through their recipe, and DefaultAreaID (when set) is the
// preferred allocation source for the product.
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	UnitOfMeasure string    `gorm:"not null;default:'unidad'"`
	IsDerived     bool      `gorm:"not null;default:false"`
	IsIngredient  bool      `gorm:"not null;default:false"`
	DefaultAreaID *uuid.UUID `gorm:"type:uuid;index"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Active        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	DefaultArea *Area `gorm:"foreignKey:DefaultAreaID"`
}

// RecipeItem is one bill-of-materials line of a derived product.
// Immutable during an allocation; only RecipeResolver reads it.
type RecipeItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID       uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_recipe_line;not null"`
	IngredientID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_recipe_line;not null"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	AffectsCost     bool            `gorm:"not null;default:true"`

	Ingredient *Product `gorm:"foreignKey:IngredientID"`
}

func (RecipeItem) TableName() string { return "recipe_items" }
