package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// ListRecipes returns one page of recipes, newest first, plus the total
// number of recipes matching filter. viewer is nil for anonymous callers;
// the favorites and cart filters are ignored for them.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter) ([]types.RecipeResponse, int64, error) {
	scope := s.filterScope(viewer, filter)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(scope).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := s.preload(s.db.WithContext(ctx)).
		Scopes(scope).
		Order("recipes.pub_date DESC").
		Order("recipes.id DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	result, err := s.annotate(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return result, count, nil
}

func (s *RecipeService) filterScope(viewer *uuid.UUID, filter types.RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(filter.Tags) > 0 {
			tagged := s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.Tags)
			db = db.Where("recipes.id IN (?)", tagged)
		}
		if filter.AuthorID != nil {
			db = db.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if viewer != nil && filter.IsFavorited {
			db = db.Where("recipes.id IN (?)", favorites.recipeIDs(s.db, *viewer))
		}
		if viewer != nil && filter.IsInShoppingCart {
			db = db.Where("recipes.id IN (?)", shoppingCart.recipeIDs(s.db, *viewer))
		}
		return db
	}
}

func (s *RecipeService) preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// annotate serializes recipes with the caller's favorite, cart and
// subscription flags, issuing one lookup per relation for the whole batch.
func (s *RecipeService) annotate(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	ids := make([]uint, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	favorited, err := favorites.contains(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := shoppingCart.contains(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedAuthors(ctx, s.db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	result := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		result[i] = toRecipeResponse(r, recipeFlags{
			favorited:    favorited[r.ID],
			inCart:       inCart[r.ID],
			subscribedTo: subscribed[r.AuthorID],
		})
	}
	return result, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, viewer *uuid.UUID, id uint) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := s.preload(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}

	result, err := s.annotate(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &result[0], nil
}

// CreateRecipe validates req and stores the recipe with its tag links and
// ingredient lines in a single transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, actor types.Actor, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	if err := s.validate(ctx, req, true); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    actor.UserID,
		Name:        strings.TrimSpace(*req.Name),
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
	}
	if req.Image != nil && *req.Image != "" {
		url, err := s.images.Save(ctx, *req.Image)
		if err != nil {
			return nil, imageError(err)
		}
		recipe.Image = url
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, recipe.ID, req.Tags); err != nil {
			return err
		}
		return replaceIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		return nil, writeError(err)
	}

	viewer := actor.UserID
	return s.GetRecipe(ctx, &viewer, recipe.ID)
}

// UpdateRecipe applies the non-nil fields of req. Only the author or an
// admin may change a recipe. Tags and ingredients, when present, replace the
// previous ones.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor types.Actor, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	recipe, err := s.ownedRecipe(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req, false); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	if req.Image != nil {
		url := ""
		if *req.Image != "" {
			if url, err = s.images.Save(ctx, *req.Image); err != nil {
				return nil, imageError(err)
			}
		}
		updates["image"] = url
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Tags != nil {
			if err := replaceTags(tx, recipe.ID, req.Tags); err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			return replaceIngredients(tx, recipe.ID, req.Ingredients)
		}
		return nil
	})
	if err != nil {
		return nil, writeError(err)
	}

	viewer := actor.UserID
	return s.GetRecipe(ctx, &viewer, recipe.ID)
}

// DeleteRecipe removes the recipe together with its ingredient lines, tag
// links and every favorite and cart entry pointing at it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor types.Actor, id uint) error {
	recipe, err := s.ownedRecipe(ctx, actor, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM recipe_tags WHERE recipe_id = ?",
			"DELETE FROM favorite_recipe_recipes WHERE recipe_id = ?",
			"DELETE FROM shopping_cart_recipes WHERE recipe_id = ?",
			"DELETE FROM recipe_ingredients WHERE recipe_id = ?",
		} {
			if err := tx.Exec(stmt, recipe.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipe.ID).Error
	})
}

func (s *RecipeService) ownedRecipe(ctx context.Context, actor types.Actor, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	if recipe.AuthorID != actor.UserID && !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// validate checks req before anything is written. On create every field but
// the image is required; on update only present fields are checked.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeWriteRequest, create bool) error {
	if create {
		switch {
		case req.Name == nil || strings.TrimSpace(*req.Name) == "":
			return invalid("name", ErrRequired)
		case req.Text == nil || strings.TrimSpace(*req.Text) == "":
			return invalid("text", ErrRequired)
		case req.CookingTime == nil:
			return invalid("cooking_time", ErrRequired)
		case req.Tags == nil:
			return invalid("tags", ErrNoTags)
		case req.Ingredients == nil:
			return invalid("ingredients", ErrNoIngredients)
		}
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return invalid("name", ErrRequired)
	}
	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		return invalid("text", ErrRequired)
	}
	if req.CookingTime != nil && *req.CookingTime < 1 {
		return invalid("cooking_time", ErrCookingTimeTooSmall)
	}
	if req.Tags != nil {
		if err := s.validateTags(ctx, req.Tags); err != nil {
			return err
		}
	}
	if req.Ingredients != nil {
		if err := s.validateIngredients(ctx, req.Ingredients); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) validateTags(ctx context.Context, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return invalid("tags", ErrNoTags)
	}
	seen := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seen[id]; dup {
			return invalid("tags", ErrDuplicateTag)
		}
		seen[id] = struct{}{}
	}

	var found int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(tagIDs)) {
		return invalid("tags", ErrUnknownTag)
	}
	return nil
}

func (s *RecipeService) validateIngredients(ctx context.Context, lines []types.IngredientAmount) error {
	if len(lines) == 0 {
		return invalid("ingredients", ErrNoIngredients)
	}
	seen := make(map[uint]struct{}, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.ID]; dup {
			return invalid("ingredients", ErrDuplicateIngredient)
		}
		seen[line.ID] = struct{}{}
		if line.Amount < 1 {
			return invalid("ingredients", ErrAmountTooSmall)
		}
		ids = append(ids, line.ID)
	}

	var found int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(ids)) {
		return invalid("ingredients", ErrUnknownIngredient)
	}
	return nil
}

func replaceTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
		return err
	}
	links := make([]map[string]interface{}, len(tagIDs))
	for i, id := range tagIDs {
		links[i] = map[string]interface{}{"recipe_id": recipeID, "tag_id": id}
	}
	return tx.Table("recipe_tags").Create(links).Error
}

func replaceIngredients(tx *gorm.DB, recipeID uint, lines []types.IngredientAmount) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	rows := make([]models.RecipeIngredient, len(lines))
	for i, line := range lines {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: line.ID, Amount: line.Amount}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// writeError turns a constraint violation the validation could not see
// (a concurrent write) into the matching validation error.
func writeError(err error) error {
	if isUniqueViolation(err) {
		return invalid("ingredients", ErrDuplicateIngredient)
	}
	return fmt.Errorf("failed to save recipe: %w", err)
}

func imageError(err error) error {
	if errors.Is(err, ErrInvalidImage) {
		return invalid("image", ErrInvalidImage)
	}
	return err
}
