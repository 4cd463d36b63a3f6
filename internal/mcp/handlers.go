package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/nutrition"
	"github.com/foodlogr/backend/internal/services"
)

// ToolHandler exposes the food-log operations as MCP tools.
type ToolHandler struct {
	logSvc    *services.FoodLogService
	reportSvc *services.ReportService
	now       func() time.Time
}

// NewToolHandler returns a new handler.
func NewToolHandler(logSvc *services.FoodLogService, reportSvc *services.ReportService) *ToolHandler {
	return &ToolHandler{logSvc: logSvc, reportSvc: reportSvc, now: time.Now}
}

// RegisterTools registers the food log tools.
func (h *ToolHandler) RegisterTools(s *server.MCPServer) error {
	setupUser := mcp.NewTool("setup_user",
		mcp.WithDescription("Set daily nutrition goals and resting energy. Replaces any previous goals."),
		mcp.WithNumber("calorie_goal", mcp.Required(), mcp.Description("Daily calorie goal in kcal")),
		mcp.WithNumber("protein_goal", mcp.Required(), mcp.Description("Daily protein goal in grams")),
		mcp.WithNumber("carb_goal", mcp.Required(), mcp.Description("Daily carbohydrate goal in grams")),
		mcp.WithNumber("fat_goal", mcp.Description("Optional daily fat goal in grams")),
		mcp.WithNumber("resting_energy", mcp.Required(), mcp.Description("Resting energy burn in kcal per day")),
	)
	s.AddTool(setupUser, h.handleSetupUser)

	getSettings := mcp.NewTool("get_settings",
		mcp.WithDescription("Get the current nutrition goals and resting energy"),
	)
	s.AddTool(getSettings, h.handleGetSettings)

	logFood := mcp.NewTool("log_food",
		mcp.WithDescription("Log a food item on a date. Calories are estimated from macros (4/4/9) when omitted."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD form")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Food name")),
		mcp.WithString("description", mcp.Description("Optional details, e.g. portion size")),
		mcp.WithNumber("calories", mcp.Description("Calories in kcal")),
		mcp.WithNumber("protein", mcp.Description("Protein in grams")),
		mcp.WithNumber("carbs", mcp.Description("Carbohydrates in grams")),
		mcp.WithNumber("fat", mcp.Description("Fat in grams")),
	)
	s.AddTool(logFood, h.handleLogFood)

	updateFood := mcp.NewTool("update_food",
		mcp.WithDescription("Update fields of an already-logged food entry. Omitted fields keep their values."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD form")),
		mcp.WithString("entry_id", mcp.Required(), mcp.Description("ID of the entry to update")),
		mcp.WithString("name", mcp.Description("New food name")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithNumber("calories", mcp.Description("New calories in kcal")),
		mcp.WithNumber("protein", mcp.Description("New protein in grams")),
		mcp.WithNumber("carbs", mcp.Description("New carbohydrates in grams")),
		mcp.WithNumber("fat", mcp.Description("New fat in grams")),
	)
	s.AddTool(updateFood, h.handleUpdateFood)

	deleteFood := mcp.NewTool("delete_food",
		mcp.WithDescription("Delete a logged food entry by ID"),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD form")),
		mcp.WithString("entry_id", mcp.Required(), mcp.Description("ID of the entry to delete")),
	)
	s.AddTool(deleteFood, h.handleDeleteFood)

	getToday := mcp.NewTool("get_today",
		mcp.WithDescription("Get today's food log, with a goal comparison when goals are configured"),
	)
	s.AddTool(getToday, h.handleGetToday)

	getDay := mcp.NewTool("get_day",
		mcp.WithDescription("Get the food log for a specific date"),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD form")),
	)
	s.AddTool(getDay, h.handleGetDay)

	getWeeklyReport := mcp.NewTool("get_weekly_report",
		mcp.WithDescription("Get the 7-day rollup ending at a date (default today), including the signed caloric balance"),
		mcp.WithString("end_date", mcp.Description("Last day of the week in YYYY-MM-DD form")),
	)
	s.AddTool(getWeeklyReport, h.handleGetWeeklyReport)

	searchCache := mcp.NewTool("search_cache",
		mcp.WithDescription("Search previously saved foods by name substring, most-used first"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to match, case-insensitive")),
	)
	s.AddTool(searchCache, h.handleSearchCache)

	addToCache := mcp.NewTool("add_to_cache",
		mcp.WithDescription("Save a reusable food definition. Set reuse when logging a cached food again so only its use count advances."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Food name, matched case- and whitespace-insensitively")),
		mcp.WithString("description", mcp.Description("Optional details")),
		mcp.WithNumber("calories", mcp.Description("Calories in kcal, estimated from macros when omitted")),
		mcp.WithNumber("protein", mcp.Description("Protein in grams")),
		mcp.WithNumber("carbs", mcp.Description("Carbohydrates in grams")),
		mcp.WithNumber("fat", mcp.Description("Fat in grams")),
		mcp.WithBoolean("reuse", mcp.Description("Advance the use counter instead of overwriting values")),
	)
	s.AddTool(addToCache, h.handleAddToCache)

	return nil
}

// identity resolves the caller from the request context. Tools refuse to
// run without one; the credential was either absent or did not resolve.
func identity(ctx context.Context) (string, *mcp.CallToolResult) {
	userID, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return "", mcp.NewToolResultError("unauthenticated: send a valid credential in the Authorization header")
	}
	return userID, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err), nil
	}
	return mcp.NewToolResultText(string(buf)), nil
}

func (h *ToolHandler) handleSetupUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}

	settings := model.Settings{
		CalorieGoal:   req.GetInt("calorie_goal", 0),
		ProteinGoal:   req.GetFloat("protein_goal", 0),
		CarbGoal:      req.GetFloat("carb_goal", 0),
		RestingEnergy: req.GetInt("resting_energy", 0),
	}
	if _, ok := req.GetArguments()["fat_goal"]; ok {
		v := req.GetFloat("fat_goal", 0)
		settings.FatGoal = &v
	}

	if err := h.logSvc.SetupUser(ctx, userID, settings); err != nil {
		return mcp.NewToolResultErrorFromErr("setup_user failed", err), nil
	}
	log.Debug().Str("user", userID[:8]).Msg("goals configured")
	out, err := h.logSvc.GetSettings(ctx, userID)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("setup_user failed", err), nil
	}
	return jsonResult(out)
}

func (h *ToolHandler) handleGetSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	out, err := h.logSvc.GetSettings(ctx, userID)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("get_settings failed", err), nil
	}
	return jsonResult(out)
}

func (h *ToolHandler) handleLogFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("log_food failed", err), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("log_food failed", err), nil
	}

	entry := model.FoodEntry{
		Name:     name,
		Calories: req.GetInt("calories", 0),
		Protein:  req.GetFloat("protein", 0),
		Carbs:    req.GetFloat("carbs", 0),
		Fat:      req.GetFloat("fat", 0),
	}
	if desc := req.GetString("description", ""); desc != "" {
		entry.Description = &desc
	}

	day, err := h.logSvc.LogEntry(ctx, userID, date, entry)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("log_food failed", err), nil
	}
	return jsonResult(day)
}

func (h *ToolHandler) handleUpdateFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("update_food failed", err), nil
	}
	entryID, err := req.RequireString("entry_id")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("update_food failed", err), nil
	}

	var patch services.EntryPatch
	args := req.GetArguments()
	if _, ok := args["name"]; ok {
		v := req.GetString("name", "")
		patch.Name = &v
	}
	if _, ok := args["description"]; ok {
		v := req.GetString("description", "")
		patch.Description = &v
	}
	if _, ok := args["calories"]; ok {
		v := req.GetInt("calories", 0)
		patch.Calories = &v
	}
	if _, ok := args["protein"]; ok {
		v := req.GetFloat("protein", 0)
		patch.Protein = &v
	}
	if _, ok := args["carbs"]; ok {
		v := req.GetFloat("carbs", 0)
		patch.Carbs = &v
	}
	if _, ok := args["fat"]; ok {
		v := req.GetFloat("fat", 0)
		patch.Fat = &v
	}

	day, err := h.logSvc.UpdateEntry(ctx, userID, date, entryID, patch)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("update_food failed", err), nil
	}
	return jsonResult(day)
}

func (h *ToolHandler) handleDeleteFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("delete_food failed", err), nil
	}
	entryID, err := req.RequireString("entry_id")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("delete_food failed", err), nil
	}

	day, err := h.logSvc.DeleteEntry(ctx, userID, date, entryID)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("delete_food failed", err), nil
	}
	return jsonResult(day)
}

func (h *ToolHandler) handleGetToday(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	date := h.now().Format(nutrition.DateLayout)
	return h.dayWithSummary(ctx, userID, date)
}

func (h *ToolHandler) handleGetDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("get_day failed", err), nil
	}
	return h.dayWithSummary(ctx, userID, date)
}

// dayWithSummary returns the log plus a goal comparison. Users who never
// ran setup still get their log, just without the summary.
func (h *ToolHandler) dayWithSummary(ctx context.Context, userID, date string) (*mcp.CallToolResult, error) {
	day, err := h.logSvc.GetDay(ctx, userID, date)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("get_day failed", err), nil
	}
	out := struct {
		*model.DayLog
		Summary *model.DailySummary `json:"summary,omitempty"`
	}{DayLog: day}
	if sum, err := h.logSvc.GetDaySummary(ctx, userID, date); err == nil {
		out.Summary = sum
	}
	return jsonResult(out)
}

func (h *ToolHandler) handleGetWeeklyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	end := h.now()
	if raw := req.GetString("end_date", ""); raw != "" {
		var err error
		end, err = time.Parse(nutrition.DateLayout, raw)
		if err != nil {
			return mcp.NewToolResultError("end_date must be YYYY-MM-DD"), nil
		}
	}
	report, err := h.reportSvc.Weekly(ctx, userID, end)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("get_weekly_report failed", err), nil
	}
	return jsonResult(report)
}

func (h *ToolHandler) handleSearchCache(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("search_cache failed", err), nil
	}
	items, err := h.logSvc.SearchCache(ctx, userID, query)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("search_cache failed", err), nil
	}
	if items == nil {
		items = []model.CacheItem{}
	}
	return jsonResult(map[string]interface{}{"items": items})
}

func (h *ToolHandler) handleAddToCache(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, denied := identity(ctx)
	if denied != nil {
		return denied, nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("add_to_cache failed", err), nil
	}

	item := model.CacheItem{
		Name:     name,
		Calories: req.GetInt("calories", 0),
		Protein:  req.GetFloat("protein", 0),
		Carbs:    req.GetFloat("carbs", 0),
		Fat:      req.GetFloat("fat", 0),
	}
	if desc := req.GetString("description", ""); desc != "" {
		item.Description = &desc
	}

	saved, err := h.logSvc.SaveCacheItem(ctx, userID, item, req.GetBool("reuse", false))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("add_to_cache failed", err), nil
	}
	return jsonResult(saved)
}
