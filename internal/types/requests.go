package types

import "github.com/google/uuid"

// RegisterRequest is the body of POST /api/users/
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

// LoginRequest is the body of POST /api/auth/token/login/
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TagRequest struct {
	Name  string `json:"name" binding:"required,max=60"`
	Color string `json:"color" binding:"required,hexcolor,len=7"`
	Slug  string `json:"slug" binding:"required,max=100"`
}

type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

// IngredientAmount is one line of a recipe write request
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest is used for both create and partial update. On update
// nil fields are left untouched.
type RecipeWriteRequest struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Image       *string            `json:"image"`
	Tags        []uint             `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// RecipeFilter carries the query parameters of the recipe list endpoint
type RecipeFilter struct {
	Tags             []string
	AuthorID         *uuid.UUID
	IsFavorited      bool
	IsInShoppingCart bool
	Page             int
	Limit            int
}

// Actor identifies the authenticated caller of a write operation
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}
