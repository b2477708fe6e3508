package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// TagHandler serves tags. Anyone may read them; only admins write.
type TagHandler struct {
	tagService service.ITagService
	validator  middleware.TokenValidator
}

func NewTagHandler(tagService service.ITagService, validator middleware.TokenValidator) *TagHandler {
	return &TagHandler{tagService: tagService, validator: validator}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := []gin.HandlerFunc{middleware.AuthMiddleware(h.validator), middleware.RequireAdmin()}

	tags := router.Group("/tags")
	{
		tags.GET("/", h.ListTags)
		tags.GET("/:id/", h.GetTag)
		tags.POST("/", append(admin, h.CreateTag)...)
		tags.PUT("/:id/", append(admin, h.UpdateTag)...)
		tags.PATCH("/:id/", append(admin, h.UpdateTag)...)
		tags.DELETE("/:id/", append(admin, h.DeleteTag)...)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	tag, err := h.tagService.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req types.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := h.tagService.CreateTag(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req types.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := h.tagService.UpdateTag(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.tagService.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
