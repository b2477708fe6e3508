package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService serves public user profiles
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUser returns a user annotated with whether viewer follows them. viewer
// is nil for anonymous callers.
func (s *UserService) GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}

	subscribed, err := subscribedAuthors(ctx, s.db, viewer, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(&user, subscribed[user.ID])
	return &resp, nil
}

// ListUsers returns one page of users ordered by username.
func (s *UserService) ListUsers(ctx context.Context, viewer *uuid.UUID, page, limit int) ([]types.UserResponse, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("username").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := subscribedAuthors(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]types.UserResponse, len(users))
	for i := range users {
		result[i] = toUserResponse(&users[i], subscribed[users[i].ID])
	}
	return result, count, nil
}

// subscribedAuthors reports which of authorIDs viewer follows, in one query.
func subscribedAuthors(ctx context.Context, db *gorm.DB, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(authorIDs))
	if viewer == nil || len(authorIDs) == 0 {
		return result, nil
	}

	var followed []uuid.UUID
	err := db.WithContext(ctx).
		Model(&models.Subscribe{}).
		Where("user_id = ? AND author_id IN ?", *viewer, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, err
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}
