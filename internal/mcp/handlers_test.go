package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/services"
	"github.com/foodlogr/backend/internal/store/sqlite"
)

func newTestHandler(t *testing.T) (*ToolHandler, string) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "foodlogr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := sqlite.New(db)

	reg, err := services.NewAuthService(s).Register(context.Background(), "mcp@example.com")
	require.NoError(t, err)

	h := NewToolHandler(services.NewFoodLogService(s), services.NewReportService(s))
	h.now = func() time.Time {
		d, _ := time.Parse("2006-01-02", "2026-02-10")
		return d
	}
	return h, reg.UserID
}

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestToolsRefuseWithoutIdentity(t *testing.T) {
	h, _ := newTestHandler(t)

	res, err := h.handleGetSettings(context.Background(), callReq(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.handleLogFood(context.Background(), callReq(map[string]interface{}{
		"date": "2026-02-10", "name": "eggs",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSetupUserAndGetSettings(t *testing.T) {
	h, userID := newTestHandler(t)
	ctx := auth.WithIdentity(context.Background(), userID)

	res, err := h.handleSetupUser(ctx, callReq(map[string]interface{}{
		"calorie_goal": 2000.0, "protein_goal": 150.0, "carb_goal": 200.0,
		"fat_goal": 70.0, "resting_energy": 1800.0,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	res, err = h.handleGetSettings(ctx, callReq(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var settings model.Settings
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &settings))
	assert.Equal(t, 2000, settings.CalorieGoal)
	require.NotNil(t, settings.FatGoal)
	assert.Equal(t, 70.0, *settings.FatGoal)
}

func TestLogUpdateDeleteFood(t *testing.T) {
	h, userID := newTestHandler(t)
	ctx := auth.WithIdentity(context.Background(), userID)

	res, err := h.handleLogFood(ctx, callReq(map[string]interface{}{
		"date": "2026-02-10", "name": "chicken breast", "protein": 31.0, "fat": 3.6,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var day model.DayLog
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &day))
	require.Len(t, day.Entries, 1)
	assert.Equal(t, 156, day.Entries[0].Calories)
	entryID := day.Entries[0].ID

	res, err = h.handleUpdateFood(ctx, callReq(map[string]interface{}{
		"date": "2026-02-10", "entry_id": entryID, "calories": 180.0,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &day))
	assert.Equal(t, 180, day.Entries[0].Calories)
	assert.Equal(t, "chicken breast", day.Entries[0].Name)

	res, err = h.handleDeleteFood(ctx, callReq(map[string]interface{}{
		"date": "2026-02-10", "entry_id": entryID,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &day))
	assert.Empty(t, day.Entries)
}

func TestUpdateFoodUnknownEntry(t *testing.T) {
	h, userID := newTestHandler(t)
	ctx := auth.WithIdentity(context.Background(), userID)

	res, err := h.handleUpdateFood(ctx, callReq(map[string]interface{}{
		"date": "2026-02-10", "entry_id": "missing", "calories": 100.0,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetTodayIncludesSummaryWhenConfigured(t *testing.T) {
	h, userID := newTestHandler(t)
	ctx := auth.WithIdentity(context.Background(), userID)

	// Without goals the log comes back without a summary.
	res, err := h.handleGetToday(ctx, callReq(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)
	var out struct {
		Date    string              `json:"date"`
		Summary *model.DailySummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "2026-02-10", out.Date)
	assert.Nil(t, out.Summary)

	_, err = h.handleSetupUser(ctx, callReq(map[string]interface{}{
		"calorie_goal": 2000.0, "protein_goal": 150.0, "carb_goal": 200.0, "resting_energy": 1800.0,
	}))
	require.NoError(t, err)
	_, err = h.handleLogFood(ctx, callReq(map[string]interface{}{
		"date": "2026-02-10", "name": "lunch", "calories": 700.0,
	}))
	require.NoError(t, err)

	res, err = h.handleGetToday(ctx, callReq(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.NotNil(t, out.Summary)
	assert.Equal(t, 700, out.Summary.TotalCalories)
	assert.Equal(t, 1300, out.Summary.CaloriesRemaining)
}

func TestWeeklyReportTool(t *testing.T) {
	h, userID := newTestHandler(t)
	ctx := auth.WithIdentity(context.Background(), userID)

	_, err := h.handleSetupUser(ctx, callReq(map[string]interface{}{
		"calorie_goal": 2000.0, "protein_goal": 150.0, "carb_goal": 200.0, "resting_energy": 1800.0,
	}))
	require.NoError(t, err)
	_, err = h.handleLogFood(ctx, callReq(map[string]interface{}{
		"date": "2026-02-09", "name": "dinner", "calories": 2500.0,
	}))
	require.NoError(t, err)

	res, err := h.handleGetWeeklyReport(ctx, callReq(map[string]interface{}{"end_date": "2026-02-10"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var report model.WeeklyReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, 1, report.DaysLogged)
	assert.Equal(t, 2500, report.TotalCalories)
	assert.Equal(t, 2500-7*1800, report.FatAdded)
}

func TestCacheTools(t *testing.T) {
	h, userID := newTestHandler(t)
	ctx := auth.WithIdentity(context.Background(), userID)

	res, err := h.handleAddToCache(ctx, callReq(map[string]interface{}{
		"name": "Greek Yogurt", "protein": 17.0, "carbs": 6.0, "fat": 0.7,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var item model.CacheItem
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &item))
	assert.Equal(t, 98, item.Calories)

	res, err = h.handleSearchCache(ctx, callReq(map[string]interface{}{"query": "yog"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Items []model.CacheItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, item.ID, out.Items[0].ID)
}
