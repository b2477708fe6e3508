package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const batchSize = 500

type ingredientData struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagData struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func readIngredients(path string) ([]ingredientData, error) {
	var data []ingredientData
	if err := readJSON(path, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func readTags(path string) ([]tagData, error) {
	var data []tagData
	if err := readJSON(path, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func readJSON(path string, v interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// seedIngredients inserts ingredients not already present. An ingredient is
// identified by its (name, measurement unit) pair.
func seedIngredients(ctx context.Context, db *gorm.DB, data []ingredientData) (int, error) {
	type key struct{ name, unit string }

	var existing []models.Ingredient
	if err := db.WithContext(ctx).Find(&existing).Error; err != nil {
		return 0, err
	}
	seen := make(map[key]bool, len(existing))
	for _, ing := range existing {
		seen[key{ing.Name, ing.MeasurementUnit}] = true
	}

	var fresh []models.Ingredient
	for _, d := range data {
		k := key{strings.TrimSpace(d.Name), strings.TrimSpace(d.MeasurementUnit)}
		if k.name == "" || k.unit == "" || seen[k] {
			continue
		}
		seen[k] = true
		fresh = append(fresh, models.Ingredient{Name: k.name, MeasurementUnit: k.unit})
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := db.WithContext(ctx).CreateInBatches(fresh, batchSize).Error; err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// seedTags inserts tags, skipping any whose name, color or slug is taken.
func seedTags(ctx context.Context, db *gorm.DB, data []tagData) (int, error) {
	created := 0
	for _, d := range data {
		tag := models.Tag{Name: d.Name, Color: strings.ToUpper(d.Color), Slug: d.Slug}
		result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
		if result.Error != nil {
			return created, fmt.Errorf("failed to create tag %s: %w", d.Name, result.Error)
		}
		created += int(result.RowsAffected)
	}
	return created, nil
}

type demoUser struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Admin     bool
}

var demoUsers = []demoUser{
	{Email: "admin@example.com", Username: "admin", FirstName: "Admin", LastName: "Foodgram", Admin: true},
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
}

// seedUsers registers the demo accounts through the regular registration
// path so each one gets its favorites list and shopping cart. Accounts that
// already exist are left alone.
func seedUsers(ctx context.Context, db *gorm.DB, auth *service.AuthService, users []demoUser, password string) (int, error) {
	created := 0
	for _, u := range users {
		user, err := auth.Register(ctx, &types.RegisterRequest{
			Email:     u.Email,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Password:  password,
		})
		if errors.Is(err, service.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to create user %s: %w", u.Username, err)
		}
		if u.Admin {
			if err := db.WithContext(ctx).Model(user).Update("is_admin", true).Error; err != nil {
				return created, fmt.Errorf("failed to promote %s: %w", u.Username, err)
			}
		}
		created++
	}
	return created, nil
}
