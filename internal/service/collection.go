package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Collection names a per-user recipe set
type Collection string

const (
	Favorites    Collection = "favorites"
	ShoppingCart Collection = "shopping_cart"
)

// recipeSet describes the owner table and join table behind a Collection
type recipeSet struct {
	owner   string
	join    string
	ownerFK string
}

var (
	favorites    = recipeSet{owner: "favorite_recipes", join: "favorite_recipe_recipes", ownerFK: "favorite_recipe_id"}
	shoppingCart = recipeSet{owner: "shopping_carts", join: "shopping_cart_recipes", ownerFK: "shopping_cart_id"}
)

func setFor(c Collection) (recipeSet, error) {
	switch c {
	case Favorites:
		return favorites, nil
	case ShoppingCart:
		return shoppingCart, nil
	}
	return recipeSet{}, fmt.Errorf("unknown collection %q", c)
}

// recipeIDs is a subquery selecting the ids of the recipes userID keeps in the set
func (r recipeSet) recipeIDs(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Table(r.join).
		Select(r.join+".recipe_id").
		Joins(fmt.Sprintf("JOIN %s ON %s.id = %s.%s", r.owner, r.owner, r.join, r.ownerFK)).
		Where(r.owner+".user_id = ?", userID)
}

// contains reports which of ids are in viewer's set, in one query.
func (r recipeSet) contains(ctx context.Context, db *gorm.DB, viewer *uuid.UUID, ids []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(ids))
	if viewer == nil || len(ids) == 0 {
		return result, nil
	}

	var present []uint
	err := r.recipeIDs(db.WithContext(ctx), *viewer).
		Where(r.join+".recipe_id IN ?", ids).
		Pluck(r.join+".recipe_id", &present).Error
	if err != nil {
		return nil, err
	}
	for _, id := range present {
		result[id] = true
	}
	return result, nil
}

// ownerID returns the id of userID's row in the owner table, creating it
// for accounts that predate provisioning.
func (r recipeSet) ownerID(tx *gorm.DB, userID uuid.UUID) (uint, error) {
	var id uint
	var err error
	switch r.owner {
	case favorites.owner:
		row := models.FavoriteRecipe{UserID: userID}
		err = tx.Where(models.FavoriteRecipe{UserID: userID}).FirstOrCreate(&row).Error
		id = row.ID
	default:
		row := models.ShoppingCart{UserID: userID}
		err = tx.Where(models.ShoppingCart{UserID: userID}).FirstOrCreate(&row).Error
		id = row.ID
	}
	return id, err
}

// CollectionService adds recipes to and removes them from a user's
// favorites and shopping cart
type CollectionService struct {
	db *gorm.DB
}

func NewCollectionService(db *gorm.DB) *CollectionService {
	return &CollectionService{db: db}
}

// Add puts the recipe into the user's collection. Adding a recipe twice is
// ErrAlreadyExists.
func (s *CollectionService) Add(ctx context.Context, c Collection, userID uuid.UUID, recipeID uint) (*types.RecipeShort, error) {
	set, err := setFor(c)
	if err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerID, err := set.ownerID(tx, userID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Table(set.join).
			Where(set.ownerFK+" = ? AND recipe_id = ?", ownerID, recipe.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}

		link := map[string]interface{}{set.ownerFK: ownerID, "recipe_id": recipe.ID}
		return tx.Table(set.join).Create(link).Error
	})
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}

	short := toRecipeShort(&recipe)
	return &short, nil
}

// Remove takes the recipe out of the user's collection. Removing a recipe
// that is not there is ErrNotInCollection.
func (s *CollectionService) Remove(ctx context.Context, c Collection, userID uuid.UUID, recipeID uint) error {
	set, err := setFor(c)
	if err != nil {
		return err
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return notFound(err)
	}

	res := s.db.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE recipe_id = ? AND %s IN (SELECT id FROM %s WHERE user_id = ?)",
			set.join, set.ownerFK, set.owner),
		recipe.ID, userID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInCollection
	}
	return nil
}
