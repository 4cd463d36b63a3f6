package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foodlogr/backend/internal/model"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.NoError(t, Email("a.b+c@sub.domain.org"))

	for _, bad := range []string{"", "plain", "no@tld", "two@@example.com", "spaces in@example.com"} {
		assert.ErrorIs(t, Email(bad), model.ErrInvalidEmail, "email %q", bad)
	}
}

func TestDate(t *testing.T) {
	assert.NoError(t, Date("2026-02-10"))
	assert.ErrorIs(t, Date("02/10/2026"), model.ErrValidation)
	assert.ErrorIs(t, Date(""), model.ErrValidation)
	assert.ErrorIs(t, Date("2026-13-40"), model.ErrValidation)
}

func TestEntry(t *testing.T) {
	assert.NoError(t, Entry(model.FoodEntry{Name: "eggs", Calories: 210}))
	assert.ErrorIs(t, Entry(model.FoodEntry{Calories: 100}), model.ErrValidation)
	assert.ErrorIs(t, Entry(model.FoodEntry{Name: "x", Calories: -1}), model.ErrValidation)
	assert.ErrorIs(t, Entry(model.FoodEntry{Name: "x", Protein: -0.1}), model.ErrValidation)
}

func TestSettings(t *testing.T) {
	assert.NoError(t, Settings(model.Settings{CalorieGoal: 2000, RestingEnergy: 1800}))
	assert.ErrorIs(t, Settings(model.Settings{CalorieGoal: -1}), model.ErrValidation)

	neg := -5.0
	assert.ErrorIs(t, Settings(model.Settings{FatGoal: &neg}), model.ErrValidation)
}
