package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// ListTags returns every tag ordered by name
func (s *TagService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	result := make([]types.TagResponse, len(tags))
	for i := range tags {
		result[i] = toTagResponse(&tags[i])
	}
	return result, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*types.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	resp := toTagResponse(&tag)
	return &resp, nil
}

func (s *TagService) CreateTag(ctx context.Context, req *types.TagRequest) (*types.TagResponse, error) {
	tag := models.Tag{
		Name:  req.Name,
		Color: strings.ToUpper(req.Color),
		Slug:  req.Slug,
	}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, invalid("tag", ErrAlreadyExists)
		}
		return nil, err
	}
	resp := toTagResponse(&tag)
	return &resp, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id uint, req *types.TagRequest) (*types.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}

	tag.Name = req.Name
	tag.Color = strings.ToUpper(req.Color)
	tag.Slug = req.Slug
	if err := s.db.WithContext(ctx).Save(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, invalid("tag", ErrAlreadyExists)
		}
		return nil, err
	}
	resp := toTagResponse(&tag)
	return &resp, nil
}

// DeleteTag removes the tag and unlinks it from every recipe
func (s *TagService) DeleteTag(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
