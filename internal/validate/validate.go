// Package validate holds boundary-level input checks. Requests are
// rejected here before any store access.
package validate

import (
	"fmt"
	"regexp"
	"time"

	"github.com/foodlogr/backend/internal/model"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const dateLayout = "2006-01-02"

// Email checks the standard address grammar.
func Email(v string) error {
	if v == "" || len(v) > 320 || !emailRx.MatchString(v) {
		return model.ErrInvalidEmail
	}
	return nil
}

// Date checks the ISO YYYY-MM-DD form used for day-log keys.
func Date(v string) error {
	if _, err := time.Parse(dateLayout, v); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", model.ErrValidation)
	}
	return nil
}

// Entry checks a food entry payload: name required, no negative values.
func Entry(e model.FoodEntry) error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if e.Calories < 0 || e.Protein < 0 || e.Carbs < 0 || e.Fat < 0 {
		return fmt.Errorf("%w: macro values must not be negative", model.ErrValidation)
	}
	return nil
}

// Settings checks a goals payload.
func Settings(s model.Settings) error {
	if s.CalorieGoal < 0 || s.ProteinGoal < 0 || s.CarbGoal < 0 || s.RestingEnergy < 0 {
		return fmt.Errorf("%w: goals must not be negative", model.ErrValidation)
	}
	if s.FatGoal != nil && *s.FatGoal < 0 {
		return fmt.Errorf("%w: fat goal must not be negative", model.ErrValidation)
	}
	return nil
}

// CacheItem checks a cache payload.
func CacheItem(c model.CacheItem) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if c.Calories < 0 || c.Protein < 0 || c.Carbs < 0 || c.Fat < 0 {
		return fmt.Errorf("%w: macro values must not be negative", model.ErrValidation)
	}
	return nil
}
