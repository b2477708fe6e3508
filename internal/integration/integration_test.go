package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/report"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func setupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	font, err := report.LoadFont("../../assets/fonts/DejaVuSans.ttf")
	require.NoError(t, err)
	renderer, err := report.NewRenderer(font)
	require.NoError(t, err)

	router := gin.New()
	api.RegisterRoutes(router, api.Dependencies{
		Auth:          service.NewAuthService(db, "secret"),
		Users:         service.NewUserService(db),
		Tags:          service.NewTagService(db),
		Ingredients:   service.NewIngredientService(db),
		Recipes:       service.NewRecipeService(db, service.NewLocalImageStore(t.TempDir(), "/media")),
		Collections:   service.NewCollectionService(db),
		Subscriptions: service.NewSubscriptionService(db),
		ShoppingList:  service.NewShoppingListService(db),
		Renderer:      renderer,
	})
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	return token.AuthToken
}

// TestShoppingCartFlowPostgres drives the whole API against PostgreSQL with
// the SQL migrations applied.
func TestShoppingCartFlowPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	db := testhelpers.SetupPostgres(t)
	router := setupRouter(t, db)

	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")
	tag := testhelpers.CreateTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	authorToken := register(t, router, "author")
	shopperToken := register(t, router, "shopper")

	create := func(name string, lines []map[string]interface{}) uint {
		w := doJSON(t, router, http.MethodPost, "/api/recipes/", authorToken, map[string]interface{}{
			"name":         name,
			"text":         "Cook it",
			"cooking_time": 15,
			"tags":         []uint{tag.ID},
			"ingredients":  lines,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var recipe types.RecipeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
		return recipe.ID
	}

	pancakes := create("Pancakes", []map[string]interface{}{
		{"id": flour.ID, "amount": 200},
		{"id": sugar.ID, "amount": 50},
	})
	bread := create("Bread", []map[string]interface{}{
		{"id": flour.ID, "amount": 100},
	})

	// A duplicate ingredient is rejected without writing anything
	w := doJSON(t, router, http.MethodPost, "/api/recipes/", authorToken, map[string]interface{}{
		"name":         "Broken",
		"text":         "Cook it",
		"cooking_time": 15,
		"tags":         []uint{tag.ID},
		"ingredients": []map[string]interface{}{
			{"id": flour.ID, "amount": 1},
			{"id": flour.ID, "amount": 2},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, id := range []uint{pancakes, bread} {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), shopperToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/recipes/?is_in_shopping_cart=1", shopperToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.RecipeResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Count)
	for _, r := range page.Results {
		assert.True(t, r.IsInShoppingCart)
	}

	var shopper struct{ ID string }
	require.NoError(t, db.Table("users").Select("id").Where("username = ?", "shopper").Scan(&shopper).Error)
	items, err := service.NewShoppingListService(db).Aggregate(context.Background(), mustUUID(t, shopper.ID))
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
		{Name: "sugar", MeasurementUnit: "g", Amount: 50},
	}, items)

	w = doJSON(t, router, http.MethodGet, "/api/recipes/download_shopping_cart/", shopperToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shoppingcart.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/", bread), authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	items, err = service.NewShoppingListService(db).Aggregate(context.Background(), mustUUID(t, shopper.ID))
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 200},
		{Name: "sugar", MeasurementUnit: "g", Amount: 50},
	}, items)
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", s, err)
	}
	return id
}
