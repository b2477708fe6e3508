package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscribe links a follower (UserID) to an author.
type Subscribe struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_author" json:"-"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_author;index" json:"-"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created"`
}

// FavoriteRecipe is the per-user favorites set. Exactly one row exists per
// user; it is provisioned when the account is created.
type FavoriteRecipe struct {
	ID      uint      `gorm:"primarykey"`
	UserID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex"`
	Recipes []Recipe  `gorm:"many2many:favorite_recipe_recipes;constraint:OnDelete:CASCADE"`
}

// ShoppingCart is the per-user set of recipes to shop for, provisioned
// together with FavoriteRecipe.
type ShoppingCart struct {
	ID      uint      `gorm:"primarykey"`
	UserID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex"`
	Recipes []Recipe  `gorm:"many2many:shopping_cart_recipes;constraint:OnDelete:CASCADE"`
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeIngredient{},
		&Subscribe{},
		&FavoriteRecipe{},
		&ShoppingCart{},
	}
}
