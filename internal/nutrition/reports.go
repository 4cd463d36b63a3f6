package nutrition

import (
	"sort"
	"time"

	"github.com/foodlogr/backend/internal/model"
)

// DateLayout is the ISO form used for day-log keys.
const DateLayout = "2006-01-02"

// DaySummary totals one day's log for inclusion in a weekly report.
func DaySummary(log model.DayLog) model.DaySummary {
	t := SumEntries(log.Entries)
	return model.DaySummary{
		Date:          log.Date,
		TotalCalories: t.Calories,
		TotalProtein:  round1(t.Protein),
		TotalCarbs:    round1(t.Carbs),
		TotalFat:      round1(t.Fat),
		EntryCount:    len(log.Entries),
	}
}

// FatAdded is the signed caloric balance over a period: consumed calories
// minus the resting burn for the full period. Positive means surplus,
// negative means deficit. The value is never clamped.
func FatAdded(totalCalories, days, restingEnergy int) int {
	return totalCalories - days*restingEnergy
}

// WeeklyReport rolls up the 7 calendar days ending at end (inclusive).
// Logs outside the window are ignored; days with no log contribute zero.
func WeeklyReport(logs []model.DayLog, settings model.Settings, end time.Time) model.WeeklyReport {
	weekEnd := end.Format(DateLayout)
	weekStart := end.AddDate(0, 0, -6).Format(DateLayout)

	var summaries []model.DaySummary
	for _, log := range logs {
		if log.Date < weekStart || log.Date > weekEnd {
			continue
		}
		summaries = append(summaries, DaySummary(log))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Date < summaries[j].Date })

	var totalCalories int
	var totalProtein, totalCarbs, totalFat float64
	for _, s := range summaries {
		totalCalories += s.TotalCalories
		totalProtein += s.TotalProtein
		totalCarbs += s.TotalCarbs
		totalFat += s.TotalFat
	}

	daysLogged := len(summaries)
	avg := 0.0
	if daysLogged > 0 {
		avg = round1(float64(totalCalories) / float64(daysLogged))
	}

	return model.WeeklyReport{
		WeekStart:        weekStart,
		WeekEnd:          weekEnd,
		DailySummaries:   summaries,
		TotalCalories:    totalCalories,
		AvgDailyCalories: avg,
		TotalProtein:     round1(totalProtein),
		TotalCarbs:       round1(totalCarbs),
		TotalFat:         round1(totalFat),
		FatAdded:         FatAdded(totalCalories, 7, settings.RestingEnergy),
		DaysLogged:       daysLogged,
	}
}
