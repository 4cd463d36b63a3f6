// Package nutrition holds the pure computation over food entries: daily
// totals, goal deltas, and weekly rollups. Nothing here touches storage.
package nutrition

import (
	"math"

	"github.com/foodlogr/backend/internal/model"
)

// Totals is the macro sum over a set of entries.
type Totals struct {
	Calories int
	Protein  float64
	Carbs    float64
	Fat      float64
}

// SumEntries totals calories and macros across a day's entries.
func SumEntries(entries []model.FoodEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbs += e.Carbs
		t.Fat += e.Fat
	}
	return t
}

// DailySummary compares a day's totals to the user's goals. Remaining
// values are signed and go negative once a goal is exceeded. FatRemaining
// is nil when no fat goal is set.
func DailySummary(entries []model.FoodEntry, settings model.Settings) model.DailySummary {
	t := SumEntries(entries)

	var fatRemaining *float64
	if settings.FatGoal != nil {
		v := round1(*settings.FatGoal - t.Fat)
		fatRemaining = &v
	}

	return model.DailySummary{
		TotalCalories:     t.Calories,
		TotalProtein:      round1(t.Protein),
		TotalCarbs:        round1(t.Carbs),
		TotalFat:          round1(t.Fat),
		CaloriesRemaining: settings.CalorieGoal - t.Calories,
		ProteinRemaining:  round1(settings.ProteinGoal - t.Protein),
		CarbsRemaining:    round1(settings.CarbGoal - t.Carbs),
		FatRemaining:      fatRemaining,
	}
}

// CaloriesFromMacros estimates calories from grams using the standard
// 4/4/9 conversion.
func CaloriesFromMacros(protein, carbs, fat float64) int {
	return int(math.Round(protein*4 + carbs*4 + fat*9))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
