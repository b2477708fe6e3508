package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the plain text password of every user created by CreateUser
const TestPassword = "testpassword123"

// CreateUser inserts a user together with its favorites list and shopping cart.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.FavoriteRecipe{UserID: user.ID}).Error; err != nil {
			return err
		}
		return tx.Create(&models.ShoppingCart{UserID: user.ID}).Error
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateAdmin inserts a user with the admin flag set.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	if err := db.Model(user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote %s: %v", username, err)
	}
	user.IsAdmin = true
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

func CreateTag(t *testing.T, db *gorm.DB, name, color, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}

// CreateRecipe inserts a recipe by author with the given ingredient amounts
// and tags, bypassing service validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[*models.Ingredient]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        name + " description",
		CookingTime: 10,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			link := map[string]interface{}{"recipe_id": recipe.ID, "tag_id": tag.ID}
			if err := tx.Table("recipe_tags").Create(link).Error; err != nil {
				return err
			}
		}
		for ingredient, amount := range amounts {
			line := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ingredient.ID, Amount: amount}
			if err := tx.Omit("Ingredient").Create(line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}

// AddToCart puts recipe into the user's shopping cart.
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	addToCollection(t, db, "shopping_carts", "shopping_cart_recipes", "shopping_cart_id", user, recipe)
}

// AddToFavorites puts recipe into the user's favorites.
func AddToFavorites(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	addToCollection(t, db, "favorite_recipes", "favorite_recipe_recipes", "favorite_recipe_id", user, recipe)
}

func addToCollection(t *testing.T, db *gorm.DB, owner, join, ownerFK string, user *models.User, recipe *models.Recipe) {
	t.Helper()
	var ownerID uint
	if err := db.Table(owner).Select("id").Where("user_id = ?", user.ID).Scan(&ownerID).Error; err != nil {
		t.Fatalf("failed to find %s row: %v", owner, err)
	}
	link := map[string]interface{}{ownerFK: ownerID, "recipe_id": recipe.ID}
	if err := db.Table(join).Create(link).Error; err != nil {
		t.Fatalf("failed to add recipe to %s: %v", join, err)
	}
}
