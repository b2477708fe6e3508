package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListService builds the aggregated ingredient list of a cart
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums the ingredient amounts of every recipe in the user's cart,
// grouped by ingredient name and measurement unit, ordered by name then unit.
// An empty cart yields an empty slice.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error) {
	items := []types.ShoppingItem{}
	err := s.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN shopping_cart_recipes ON shopping_cart_recipes.shopping_cart_id = shopping_carts.id").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_recipes.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping cart: %w", err)
	}
	return items, nil
}
