package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/report"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	authService       service.IAuthService
	recipeService     service.IRecipeService
	collectionService service.ICollectionService
	shoppingList      service.IShoppingListService
	renderer          ShoppingListRenderer
	creationLimiter   *middleware.RateLimiter
}

func NewRecipeHandler(deps Dependencies) *RecipeHandler {
	return &RecipeHandler{
		authService:       deps.Auth,
		recipeService:     deps.Recipes,
		collectionService: deps.Collections,
		shoppingList:      deps.ShoppingList,
		renderer:          deps.Renderer,
		creationLimiter:   deps.RateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	create := []gin.HandlerFunc{auth}
	if h.creationLimiter != nil {
		create = append(create, h.creationLimiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", optional, h.ListRecipes)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", auth, h.DownloadShoppingCart)
		recipes.GET("/:id/", optional, h.GetRecipe)
		recipes.PATCH("/:id/", auth, h.UpdateRecipe)
		recipes.DELETE("/:id/", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite/", auth, h.collectionAdd(service.Favorites))
		recipes.DELETE("/:id/favorite/", auth, h.collectionRemove(service.Favorites))
		recipes.POST("/:id/shopping_cart/", auth, h.collectionAdd(service.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart/", auth, h.collectionRemove(service.ShoppingCart))
	}
}

// ListRecipes supports ?tags=<slug> (repeatable), ?author=<user id>,
// ?is_favorited=1 and ?is_in_shopping_cart=1
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := pagination(c)
	filter := types.RecipeFilter{
		Tags:             c.QueryArray("tags"),
		IsFavorited:      c.Query("is_favorited") == "1",
		IsInShoppingCart: c.Query("is_in_shopping_cart") == "1",
		Page:             page,
		Limit:            limit,
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"author": []string{"invalid user id"}})
			return
		}
		filter.AuthorID = &authorID
	}

	recipes, count, err := h.recipeService.ListRecipes(c.Request.Context(), viewer(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, recipes, count, page, limit))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Uint("recipe_id", recipe.ID).Str("user_id", caller.UserID.String()).Msg("recipe created")
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) collectionAdd(collection service.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}

		short, err := h.collectionService.Add(c.Request.Context(), collection, userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, short)
	}
}

func (h *RecipeHandler) collectionRemove(collection service.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}

		if err := h.collectionService.Remove(c.Request.Context(), collection, userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the caller's aggregated shopping list as a PDF
// attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.shoppingList.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, items); err != nil {
		respondError(c, fmt.Errorf("failed to render shopping list: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
