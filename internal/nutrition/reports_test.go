package nutrition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/model"
)

func dayLog(date string, calories ...int) model.DayLog {
	log := model.DayLog{Date: date}
	for i, cal := range calories {
		log.Entries = append(log.Entries, model.FoodEntry{
			ID:       date + "-" + string(rune('a'+i)),
			Name:     "meal",
			Calories: cal,
			Protein:  10,
			Carbs:    20,
			Fat:      5,
		})
	}
	return log
}

func TestFatAdded_Signed(t *testing.T) {
	// 11,000 consumed over a week at 1,800 resting burn is a 1,600 deficit.
	assert.Equal(t, -1600, FatAdded(11000, 7, 1800))
	assert.Equal(t, 1400, FatAdded(14000, 7, 1800))
	assert.Equal(t, 0, FatAdded(12600, 7, 1800))
}

func TestWeeklyReport_PartialWeek(t *testing.T) {
	end, err := time.Parse(DateLayout, "2026-03-08")
	require.NoError(t, err)

	settings := model.Settings{CalorieGoal: 2000, RestingEnergy: 1800}
	logs := []model.DayLog{
		dayLog("2026-03-02", 1500, 900),
		dayLog("2026-03-04", 2100),
		dayLog("2026-03-06", 1800, 600),
		dayLog("2026-03-08", 2000),
	}

	r := WeeklyReport(logs, settings, end)

	assert.Equal(t, "2026-03-02", r.WeekStart)
	assert.Equal(t, "2026-03-08", r.WeekEnd)
	assert.Equal(t, 4, r.DaysLogged)
	assert.Len(t, r.DailySummaries, 4)
	assert.Equal(t, 8900, r.TotalCalories)
	assert.InDelta(t, 2225, r.AvgDailyCalories, 1e-9)
	// Resting burn covers the full 7 days even when only 4 are logged.
	assert.Equal(t, 8900-7*1800, r.FatAdded)
}

func TestWeeklyReport_EmptyWeek(t *testing.T) {
	end, err := time.Parse(DateLayout, "2026-03-08")
	require.NoError(t, err)

	r := WeeklyReport(nil, model.Settings{RestingEnergy: 1800}, end)
	assert.Zero(t, r.TotalCalories)
	assert.Zero(t, r.DaysLogged)
	assert.Zero(t, r.AvgDailyCalories)
	assert.Equal(t, -7*1800, r.FatAdded)
}

func TestWeeklyReport_IgnoresOutOfWindowLogs(t *testing.T) {
	end, err := time.Parse(DateLayout, "2026-03-08")
	require.NoError(t, err)

	logs := []model.DayLog{
		dayLog("2026-03-01", 9999), // day before the window
		dayLog("2026-03-05", 1000),
		dayLog("2026-03-09", 9999), // day after the window
	}
	r := WeeklyReport(logs, model.Settings{RestingEnergy: 1000}, end)
	assert.Equal(t, 1000, r.TotalCalories)
	assert.Equal(t, 1, r.DaysLogged)
}

func TestWeeklyReport_SummariesSortedByDate(t *testing.T) {
	end, err := time.Parse(DateLayout, "2026-03-08")
	require.NoError(t, err)

	logs := []model.DayLog{
		dayLog("2026-03-07", 100),
		dayLog("2026-03-03", 200),
		dayLog("2026-03-05", 300),
	}
	r := WeeklyReport(logs, model.Settings{}, end)
	require.Len(t, r.DailySummaries, 3)
	assert.Equal(t, "2026-03-03", r.DailySummaries[0].Date)
	assert.Equal(t, "2026-03-05", r.DailySummaries[1].Date)
	assert.Equal(t, "2026-03-07", r.DailySummaries[2].Date)
}
