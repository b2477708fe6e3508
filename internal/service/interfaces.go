package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(user *models.User) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IUserService defines the interface for public user profiles
type IUserService interface {
	GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error)
	ListUsers(ctx context.Context, viewer *uuid.UUID, page, limit int) ([]types.UserResponse, int64, error)
}

// ITagService defines the interface for tag operations
type ITagService interface {
	ListTags(ctx context.Context) ([]types.TagResponse, error)
	GetTag(ctx context.Context, id uint) (*types.TagResponse, error)
	CreateTag(ctx context.Context, req *types.TagRequest) (*types.TagResponse, error)
	UpdateTag(ctx context.Context, id uint, req *types.TagRequest) (*types.TagResponse, error)
	DeleteTag(ctx context.Context, id uint) error
}

// IIngredientService defines the interface for ingredient operations
type IIngredientService interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error)
	CreateIngredient(ctx context.Context, req *types.IngredientRequest) (*types.IngredientResponse, error)
	UpdateIngredient(ctx context.Context, id uint, req *types.IngredientRequest) (*types.IngredientResponse, error)
	DeleteIngredient(ctx context.Context, id uint) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter) ([]types.RecipeResponse, int64, error)
	GetRecipe(ctx context.Context, viewer *uuid.UUID, id uint) (*types.RecipeResponse, error)
	CreateRecipe(ctx context.Context, actor types.Actor, req *types.RecipeWriteRequest) (*types.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, actor types.Actor, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, actor types.Actor, id uint) error
}

// ICollectionService defines the interface for favorites and shopping cart membership
type ICollectionService interface {
	Add(ctx context.Context, c Collection, userID uuid.UUID, recipeID uint) (*types.RecipeShort, error)
	Remove(ctx context.Context, c Collection, userID uuid.UUID, recipeID uint) error
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	ListSubscriptions(ctx context.Context, userID uuid.UUID, page, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IShoppingListService defines the interface for shopping list aggregation
type IShoppingListService interface {
	Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ITagService          = (*TagService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ ICollectionService   = (*CollectionService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ ImageStore           = (*S3ImageStore)(nil)
	_ ImageStore           = (*LocalImageStore)(nil)
)
