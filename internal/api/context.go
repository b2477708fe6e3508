package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	defaultPageLimit = 6
	maxPageLimit     = 100
)

// currentUserID returns the authenticated caller
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// viewer returns the caller's id or nil for anonymous requests
func viewer(c *gin.Context) *uuid.UUID {
	id, ok := currentUserID(c)
	if !ok {
		return nil
	}
	return &id
}

func actor(c *gin.Context) (types.Actor, bool) {
	id, ok := currentUserID(c)
	if !ok {
		return types.Actor{}, false
	}
	return types.Actor{UserID: id, IsAdmin: c.GetBool(middleware.IsAdminKey)}, true
}

// requireUser writes a 401 when the request carries no user
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return id, ok
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

// intQuery reads a positive integer query parameter
func intQuery(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// pagination reads the page and limit query parameters
func pagination(c *gin.Context) (page, limit int) {
	page = intQuery(c, "page", 1)
	limit = intQuery(c, "limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// newPage wraps results with links to the neighbouring pages
func newPage[T any](c *gin.Context, results []T, count int64, page, limit int) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	p := types.Page[T]{Count: count, Results: results}
	if int64(page*limit) < count {
		next := pageURL(c, page+1)
		p.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
