package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListRenderer turns an aggregated shopping list into a document
type ShoppingListRenderer interface {
	Render(w io.Writer, items []types.ShoppingItem) error
}

// Dependencies are the services the HTTP layer talks to. RateLimiter may be
// nil, which disables rate limiting.
type Dependencies struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Tags          service.ITagService
	Ingredients   service.IIngredientService
	Recipes       service.IRecipeService
	Collections   service.ICollectionService
	Subscriptions service.ISubscriptionService
	ShoppingList  service.IShoppingListService
	Renderer      ShoppingListRenderer
	RateLimiter   *middleware.RateLimiter
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Foodgram API is running",
	})
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	api := router.Group("/api")

	NewUserHandler(deps.Auth, deps.Users, deps.Subscriptions).RegisterRoutes(api)
	NewTagHandler(deps.Tags, deps.Auth).RegisterRoutes(api)
	NewIngredientHandler(deps.Ingredients, deps.Auth).RegisterRoutes(api)
	NewRecipeHandler(deps).RegisterRoutes(api)
}
