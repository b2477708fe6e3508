package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const downloadPath = "/api/recipes/download_shopping_cart/"

type failingRenderer struct{}

func (failingRenderer) Render(io.Writer, []types.ShoppingItem) error {
	return errors.New("font exploded")
}

func TestDownloadShoppingCart(t *testing.T) {
	env := SetupTestEnv(t)
	author := testhelpers.CreateUser(t, env.DB, "author")
	shopper := testhelpers.CreateUser(t, env.DB, "shopper")
	flour := testhelpers.CreateIngredient(t, env.DB, "мука", "г")
	sugar := testhelpers.CreateIngredient(t, env.DB, "сахар", "г")
	tag := testhelpers.CreateTag(t, env.DB, "Завтрак", "#E26C2D", "breakfast")
	pancakes := testhelpers.CreateRecipe(t, env.DB, author, "Блины", map[*models.Ingredient]int{flour: 200, sugar: 50}, tag)
	bread := testhelpers.CreateRecipe(t, env.DB, author, "Хлеб", map[*models.Ingredient]int{flour: 100}, tag)
	testhelpers.AddToCart(t, env.DB, shopper, pancakes)
	testhelpers.AddToCart(t, env.DB, shopper, bread)

	w := PerformRequest(env.Router, http.MethodGet, downloadPath, env.TokenFor(t, shopper), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shoppingcart.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	assert.Equal(t, 1, bytes.Count(w.Body.Bytes(), []byte("/Type /Page\n")))
}

func TestDownloadEmptyShoppingCart(t *testing.T) {
	env := SetupTestEnv(t)
	shopper := testhelpers.CreateUser(t, env.DB, "shopper")

	w := PerformRequest(env.Router, http.MethodGet, downloadPath, env.TokenFor(t, shopper), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	assert.Equal(t, 1, bytes.Count(w.Body.Bytes(), []byte("/Type /Page\n")))
}

func TestDownloadShoppingCartRequiresAuth(t *testing.T) {
	env := SetupTestEnv(t)

	w := PerformRequest(env.Router, http.MethodGet, downloadPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDownloadShoppingCartAggregationFailure(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	shopper := testhelpers.CreateUser(t, db, "shopper")

	shopping := new(mocks.MockShoppingListService)
	shopping.On("Aggregate", mock.Anything, shopper.ID).Return(nil, errors.New("connection reset"))

	deps := testDependencies(t, db)
	deps.ShoppingList = shopping
	router := newRouter(deps)

	token, err := deps.Auth.GenerateToken(shopper)
	require.NoError(t, err)

	w := PerformRequest(router, http.MethodGet, downloadPath, token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	shopping.AssertExpectations(t)
}

func TestDownloadShoppingCartRenderFailure(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	shopper := testhelpers.CreateUser(t, db, "shopper")

	deps := testDependencies(t, db)
	deps.Renderer = failingRenderer{}
	router := newRouter(deps)

	token, err := deps.Auth.GenerateToken(shopper)
	require.NoError(t, err)

	w := PerformRequest(router, http.MethodGet, downloadPath, token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestHealthCheck(t *testing.T) {
	env := SetupTestEnv(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := PerformRequest(env.Router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	}
}
