package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IngredientHandler serves the ingredient catalogue, readable by anyone and
// writable by admins.
type IngredientHandler struct {
	ingredientService service.IIngredientService
	validator         middleware.TokenValidator
}

func NewIngredientHandler(ingredientService service.IIngredientService, validator middleware.TokenValidator) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService, validator: validator}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := []gin.HandlerFunc{middleware.AuthMiddleware(h.validator), middleware.RequireAdmin()}

	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("/", h.ListIngredients)
		ingredients.GET("/:id/", h.GetIngredient)
		ingredients.POST("/", append(admin, h.CreateIngredient)...)
		ingredients.PUT("/:id/", append(admin, h.UpdateIngredient)...)
		ingredients.PATCH("/:id/", append(admin, h.UpdateIngredient)...)
		ingredients.DELETE("/:id/", append(admin, h.DeleteIngredient)...)
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.ingredientService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req types.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ingredient, err := h.ingredientService.CreateIngredient(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req types.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ingredient, err := h.ingredientService.UpdateIngredient(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ingredientService.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
