package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// SubscriptionService manages who follows which author
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes userID follow authorID and returns the author with up to
// recipesLimit of their latest recipes. recipesLimit <= 0 means no limit.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		return nil, notFound(err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscribe{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	err := s.db.WithContext(ctx).Create(&models.Subscribe{UserID: userID, AuthorID: authorID}).Error
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}

	subs, err := s.withRecipes(ctx, []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		return notFound(err)
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscribe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInCollection
	}
	return nil
}

// ListSubscriptions returns one page of the authors userID follows, most
// recent subscription first.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uuid.UUID, page, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	followed := s.db.Model(&models.Subscribe{}).Select("author_id").Where("user_id = ?", userID)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", followed).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN subscribes ON subscribes.author_id = users.id AND subscribes.user_id = ?", userID).
		Order("subscribes.created_at DESC, subscribes.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}

	subs, err := s.withRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, count, nil
}

// withRecipes attaches recipe counts and the latest recipes of each author.
// Every author here is followed by the caller.
func (s *SubscriptionService) withRecipes(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	result := make([]types.SubscriptionResponse, len(authors))
	if len(authors) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	countByAuthor := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Total
	}

	var recipes []models.Recipe
	err = s.db.WithContext(ctx).
		Where("author_id IN ?", ids).
		Order("pub_date DESC, id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	byAuthor := make(map[uuid.UUID][]types.RecipeShort, len(authors))
	for i := range recipes {
		r := &recipes[i]
		if recipesLimit > 0 && len(byAuthor[r.AuthorID]) >= recipesLimit {
			continue
		}
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], toRecipeShort(r))
	}

	for i := range authors {
		a := &authors[i]
		short := byAuthor[a.ID]
		if short == nil {
			short = []types.RecipeShort{}
		}
		result[i] = types.SubscriptionResponse{
			UserResponse: toUserResponse(a, true),
			Recipes:      short,
			RecipesCount: countByAuthor[a.ID],
		}
	}
	return result, nil
}
