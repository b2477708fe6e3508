package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// ListIngredients returns ingredients ordered by name. A non-empty
// namePrefix keeps only names starting with it, ignoring case.
func (s *IngredientService) ListIngredients(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error) {
	query := s.db.WithContext(ctx).Order("name").Order("id")
	if namePrefix = strings.TrimSpace(namePrefix); namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	result := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		result[i] = toIngredientResponse(&ingredients[i])
	}
	return result, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err)
	}
	resp := toIngredientResponse(&ingredient)
	return &resp, nil
}

func (s *IngredientService) CreateIngredient(ctx context.Context, req *types.IngredientRequest) (*types.IngredientResponse, error) {
	ingredient := models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, err
	}
	resp := toIngredientResponse(&ingredient)
	return &resp, nil
}

func (s *IngredientService) UpdateIngredient(ctx context.Context, id uint, req *types.IngredientRequest) (*types.IngredientResponse, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err)
	}
	ingredient.Name = req.Name
	ingredient.MeasurementUnit = req.MeasurementUnit
	if err := s.db.WithContext(ctx).Save(&ingredient).Error; err != nil {
		return nil, err
	}
	resp := toIngredientResponse(&ingredient)
	return &resp, nil
}

// DeleteIngredient refuses to remove an ingredient that recipes still use
func (s *IngredientService) DeleteIngredient(ctx context.Context, id uint) error {
	var used int64
	if err := s.db.WithContext(ctx).Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
		return err
	}
	if used > 0 {
		return invalid("ingredient", ErrIngredientInUse)
	}

	res := s.db.WithContext(ctx).Delete(&models.Ingredient{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
