package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/nutrition"
)

func TestReportService_WeeklyRequiresSettings(t *testing.T) {
	s := newTestStore(t)
	userID := registerUser(t, NewAuthService(s))

	_, err := NewReportService(s).Weekly(context.Background(), userID, time.Now())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReportService_Weekly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	userID := registerUser(t, NewAuthService(s))
	logSvc := NewFoodLogService(s)

	require.NoError(t, logSvc.SetupUser(ctx, userID, model.Settings{
		CalorieGoal: 2000, ProteinGoal: 150, CarbGoal: 200, RestingEnergy: 1800,
	}))

	end, err := time.Parse(nutrition.DateLayout, "2026-02-10")
	require.NoError(t, err)

	// Four logged days inside the window, one outside it.
	for i := 0; i < 4; i++ {
		date := end.AddDate(0, 0, -i).Format(nutrition.DateLayout)
		_, err := logSvc.LogEntry(ctx, userID, date, model.FoodEntry{
			Name: fmt.Sprintf("meal %d", i), Calories: 2000, Protein: 100,
		})
		require.NoError(t, err)
	}
	_, err = logSvc.LogEntry(ctx, userID, "2026-02-01", model.FoodEntry{Name: "old meal", Calories: 5000})
	require.NoError(t, err)

	report, err := NewReportService(s).Weekly(ctx, userID, end)
	require.NoError(t, err)

	assert.Equal(t, "2026-02-04", report.WeekStart)
	assert.Equal(t, "2026-02-10", report.WeekEnd)
	assert.Equal(t, 4, report.DaysLogged)
	assert.Equal(t, 8000, report.TotalCalories)
	assert.Equal(t, 2000.0, report.AvgDailyCalories)
	// Balance is against a full week of resting burn even on a partial
	// week: 8000 - 7*1800.
	assert.Equal(t, -4600, report.FatAdded)
	require.Len(t, report.DailySummaries, 4)
	assert.Equal(t, "2026-02-07", report.DailySummaries[0].Date)
}
