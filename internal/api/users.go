package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves registration, login, profiles and subscriptions
type UserHandler struct {
	authService         service.IAuthService
	userService         service.IUserService
	subscriptionService service.ISubscriptionService
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, subscriptionService service.ISubscriptionService) *UserHandler {
	return &UserHandler{
		authService:         authService,
		userService:         userService,
		subscriptionService: subscriptionService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	router.POST("/auth/token/login/", h.Login)

	users := router.Group("/users")
	{
		users.GET("/", optional, h.ListUsers)
		users.POST("/", h.Register)
		users.GET("/me/", auth, h.Me)
		users.GET("/subscriptions/", auth, h.ListSubscriptions)
		users.GET("/:id/", optional, h.GetUser)
		users.POST("/:id/subscribe/", auth, h.Subscribe)
		users.DELETE("/:id/subscribe/", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), nil, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pagination(c)
	users, count, err := h.userService.ListUsers(c.Request.Context(), viewer(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, users, count, page, limit))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, authorID, intQuery(c, "recipes_limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	page, limit := pagination(c)
	subs, count, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), userID, page, limit, intQuery(c, "recipes_limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, subs, count, page, limit))
}
