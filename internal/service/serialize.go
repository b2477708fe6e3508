package service

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUserResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func toTagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toIngredientResponse(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toRecipeShort(r *models.Recipe) types.RecipeShort {
	return types.RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// recipeFlags holds the per-caller annotations of a recipe
type recipeFlags struct {
	favorited    bool
	inCart       bool
	subscribedTo bool
}

// toRecipeResponse expects Author, Tags and Ingredients.Ingredient preloaded.
func toRecipeResponse(r *models.Recipe, flags recipeFlags) types.RecipeResponse {
	tags := make([]types.TagResponse, 0, len(r.Tags))
	for i := range r.Tags {
		tags = append(tags, toTagResponse(&r.Tags[i]))
	}
	ingredients := make([]types.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           toUserResponse(&r.Author, flags.subscribedTo),
		Ingredients:      ingredients,
		IsFavorited:      flags.favorited,
		IsInShoppingCart: flags.inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}
}
