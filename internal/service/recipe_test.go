package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeFixture struct {
	db     *gorm.DB
	svc    *service.RecipeService
	author *models.User
	flour  *models.Ingredient
	sugar  *models.Ingredient
	dinner *models.Tag
	lunch  *models.Tag
}

func setupRecipeTest(t *testing.T) *recipeFixture {
	db := testhelpers.SetupSQLite(t)
	return &recipeFixture{
		db:     db,
		svc:    service.NewRecipeService(db, service.NewLocalImageStore(t.TempDir(), "/media")),
		author: testhelpers.CreateUser(t, db, "author"),
		flour:  testhelpers.CreateIngredient(t, db, "flour", "g"),
		sugar:  testhelpers.CreateIngredient(t, db, "sugar", "g"),
		dinner: testhelpers.CreateTag(t, db, "Dinner", "#FF0000", "dinner"),
		lunch:  testhelpers.CreateTag(t, db, "Lunch", "#00FF00", "lunch"),
	}
}

func (f *recipeFixture) request() *types.RecipeWriteRequest {
	name, text, cookingTime := "Pancakes", "Mix and fry.", 15
	return &types.RecipeWriteRequest{
		Name:        &name,
		Text:        &text,
		CookingTime: &cookingTime,
		Tags:        []uint{f.dinner.ID},
		Ingredients: []types.IngredientAmount{
			{ID: f.flour.ID, Amount: 200},
			{ID: f.sugar.ID, Amount: 50},
		},
	}
}

func (f *recipeFixture) actor() types.Actor {
	return types.Actor{UserID: f.author.ID}
}

func TestCreateRecipe(t *testing.T) {
	f := setupRecipeTest(t)

	req := f.request()
	image := "data:image/png;base64,aGVsbG8="
	req.Image = &image

	recipe, err := f.svc.CreateRecipe(context.Background(), f.actor(), req)
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, 15, recipe.CookingTime)
	assert.Equal(t, f.author.ID, recipe.Author.ID)
	assert.Contains(t, recipe.Image, "/media/recipes/images/")
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "dinner", recipe.Tags[0].Slug)
	assert.Equal(t, []types.RecipeIngredientResponse{
		{ID: f.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 200},
		{ID: f.sugar.ID, Name: "sugar", MeasurementUnit: "g", Amount: 50},
	}, recipe.Ingredients)
	assert.False(t, recipe.IsFavorited)
	assert.False(t, recipe.IsInShoppingCart)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := setupRecipeTest(t)

	tests := []struct {
		name    string
		mutate  func(req *types.RecipeWriteRequest)
		field   string
		wantErr error
	}{
		{
			name: "duplicate ingredient",
			mutate: func(req *types.RecipeWriteRequest) {
				req.Ingredients = append(req.Ingredients, types.IngredientAmount{ID: f.flour.ID, Amount: 10})
			},
			field:   "ingredients",
			wantErr: service.ErrDuplicateIngredient,
		},
		{
			name: "unknown ingredient",
			mutate: func(req *types.RecipeWriteRequest) {
				req.Ingredients = []types.IngredientAmount{{ID: 9999, Amount: 1}}
			},
			field:   "ingredients",
			wantErr: service.ErrUnknownIngredient,
		},
		{
			name: "amount below one",
			mutate: func(req *types.RecipeWriteRequest) {
				req.Ingredients[0].Amount = 0
			},
			field:   "ingredients",
			wantErr: service.ErrAmountTooSmall,
		},
		{
			name: "cooking time below one",
			mutate: func(req *types.RecipeWriteRequest) {
				zero := 0
				req.CookingTime = &zero
			},
			field:   "cooking_time",
			wantErr: service.ErrCookingTimeTooSmall,
		},
		{
			name:    "no tags",
			mutate:  func(req *types.RecipeWriteRequest) { req.Tags = []uint{} },
			field:   "tags",
			wantErr: service.ErrNoTags,
		},
		{
			name:    "unknown tag",
			mutate:  func(req *types.RecipeWriteRequest) { req.Tags = []uint{f.dinner.ID, 9999} },
			field:   "tags",
			wantErr: service.ErrUnknownTag,
		},
		{
			name:    "no ingredients",
			mutate:  func(req *types.RecipeWriteRequest) { req.Ingredients = []types.IngredientAmount{} },
			field:   "ingredients",
			wantErr: service.ErrNoIngredients,
		},
		{
			name:    "missing name",
			mutate:  func(req *types.RecipeWriteRequest) { req.Name = nil },
			field:   "name",
			wantErr: service.ErrRequired,
		},
		{
			name: "invalid image",
			mutate: func(req *types.RecipeWriteRequest) {
				image := "not-a-data-url"
				req.Image = &image
			},
			field:   "image",
			wantErr: service.ErrInvalidImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request()
			tt.mutate(req)

			_, err := f.svc.CreateRecipe(context.Background(), f.actor(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	var recipes, lines int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&recipes).Error)
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Count(&lines).Error)
	assert.Zero(t, recipes)
	assert.Zero(t, lines)
}

func TestUpdateRecipe(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.actor(), f.request())
	require.NoError(t, err)

	name := "Sweet pancakes"
	updated, err := f.svc.UpdateRecipe(ctx, f.actor(), created.ID, &types.RecipeWriteRequest{
		Name:        &name,
		Tags:        []uint{f.lunch.ID},
		Ingredients: []types.IngredientAmount{{ID: f.sugar.ID, Amount: 100}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sweet pancakes", updated.Name)
	assert.Equal(t, "Mix and fry.", updated.Text)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "lunch", updated.Tags[0].Slug)
	assert.Equal(t, []types.RecipeIngredientResponse{
		{ID: f.sugar.ID, Name: "sugar", MeasurementUnit: "g", Amount: 100},
	}, updated.Ingredients)

	var lines int64
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestUpdateRecipeForbidden(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.actor(), f.request())
	require.NoError(t, err)

	stranger := testhelpers.CreateUser(t, f.db, "stranger")
	name := "Hijacked"
	_, err = f.svc.UpdateRecipe(ctx, types.Actor{UserID: stranger.ID}, created.ID, &types.RecipeWriteRequest{Name: &name})
	assert.ErrorIs(t, err, service.ErrForbidden)

	err = f.svc.DeleteRecipe(ctx, types.Actor{UserID: stranger.ID}, created.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// admins may edit anything
	admin := testhelpers.CreateAdmin(t, f.db, "admin")
	updated, err := f.svc.UpdateRecipe(ctx, types.Actor{UserID: admin.ID, IsAdmin: true}, created.ID, &types.RecipeWriteRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", updated.Name)
}

func TestDeleteRecipeRemovesLinks(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.actor(), f.request())
	require.NoError(t, err)

	recipe := &models.Recipe{ID: created.ID}
	testhelpers.AddToCart(t, f.db, f.author, recipe)
	testhelpers.AddToFavorites(t, f.db, f.author, recipe)

	require.NoError(t, f.svc.DeleteRecipe(ctx, f.actor(), created.ID))

	_, err = f.svc.GetRecipe(ctx, nil, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	for _, table := range []string{"recipe_tags", "recipe_ingredients", "shopping_cart_recipes", "favorite_recipe_recipes"} {
		var count int64
		require.NoError(t, f.db.Table(table).Where("recipe_id = ?", created.ID).Count(&count).Error)
		assert.Zero(t, count, table)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	f := setupRecipeTest(t)
	_, err := f.svc.GetRecipe(context.Background(), nil, 12345)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListRecipesFiltersAndAnnotations(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	other := testhelpers.CreateUser(t, f.db, "other")
	r1 := testhelpers.CreateRecipe(t, f.db, f.author, "Soup", map[*models.Ingredient]int{f.flour: 10}, f.dinner)
	r2 := testhelpers.CreateRecipe(t, f.db, f.author, "Salad", map[*models.Ingredient]int{f.sugar: 5}, f.lunch)
	r3 := testhelpers.CreateRecipe(t, f.db, other, "Cake", map[*models.Ingredient]int{f.sugar: 200}, f.dinner, f.lunch)

	viewer := other.ID
	testhelpers.AddToFavorites(t, f.db, other, r1)
	testhelpers.AddToCart(t, f.db, other, r2)

	all, count, err := f.svc.ListRecipes(ctx, &viewer, types.RecipeFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.Len(t, all, 3)
	byID := map[uint]types.RecipeResponse{}
	for _, r := range all {
		byID[r.ID] = r
	}
	assert.True(t, byID[r1.ID].IsFavorited)
	assert.False(t, byID[r1.ID].IsInShoppingCart)
	assert.True(t, byID[r2.ID].IsInShoppingCart)
	assert.False(t, byID[r3.ID].IsFavorited)

	lunch, count, err := f.svc.ListRecipes(ctx, nil, types.RecipeFilter{Tags: []string{"lunch"}, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.ElementsMatch(t, []uint{r2.ID, r3.ID}, recipeIDs(lunch))

	byAuthor, _, err := f.svc.ListRecipes(ctx, nil, types.RecipeFilter{AuthorID: &other.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{r3.ID}, recipeIDs(byAuthor))

	favorited, _, err := f.svc.ListRecipes(ctx, &viewer, types.RecipeFilter{IsFavorited: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{r1.ID}, recipeIDs(favorited))

	inCart, _, err := f.svc.ListRecipes(ctx, &viewer, types.RecipeFilter{IsInShoppingCart: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID}, recipeIDs(inCart))

	anonymous, _, err := f.svc.ListRecipes(ctx, nil, types.RecipeFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	for _, r := range anonymous {
		assert.False(t, r.IsFavorited)
		assert.False(t, r.IsInShoppingCart)
		assert.False(t, r.Author.IsSubscribed)
	}
}

func TestListRecipesPagination(t *testing.T) {
	f := setupRecipeTest(t)
	for i := 0; i < 7; i++ {
		testhelpers.CreateRecipe(t, f.db, f.author, "Recipe "+uuid.NewString()[:8], map[*models.Ingredient]int{f.flour: 1}, f.dinner)
	}

	page1, count, err := f.svc.ListRecipes(context.Background(), nil, types.RecipeFilter{Page: 1, Limit: 6})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.Len(t, page1, 6)

	page2, _, err := f.svc.ListRecipes(context.Background(), nil, types.RecipeFilter{Page: 2, Limit: 6})
	require.NoError(t, err)
	assert.Len(t, page2, 1)
	assert.NotContains(t, recipeIDs(page1), page2[0].ID)
}

func recipeIDs(recipes []types.RecipeResponse) []uint {
	ids := make([]uint, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	return ids
}
