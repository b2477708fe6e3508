package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotInCollection    = errors.New("recipe is not in the list")
	ErrSelfSubscription   = errors.New("you cannot subscribe to yourself")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Recipe write validation failures
var (
	ErrRequired            = errors.New("this field is required")
	ErrNoIngredients       = errors.New("a recipe needs at least one ingredient")
	ErrDuplicateIngredient = errors.New("ingredients must not repeat")
	ErrUnknownIngredient   = errors.New("ingredient does not exist")
	ErrAmountTooSmall      = errors.New("ingredient amount must be at least 1")
	ErrCookingTimeTooSmall = errors.New("cooking time must be at least 1 minute")
	ErrNoTags              = errors.New("a recipe needs at least one tag")
	ErrDuplicateTag        = errors.New("tags must not repeat")
	ErrUnknownTag          = errors.New("tag does not exist")
	ErrInvalidImage        = errors.New("image must be a base64 encoded data URL")
	ErrIngredientInUse     = errors.New("ingredient is used by existing recipes")
)

// ValidationError reports which input field failed and why.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// isUniqueViolation reports whether err comes from a unique constraint.
// TranslateError covers the drivers GORM knows; the string match catches
// statements executed outside of it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
