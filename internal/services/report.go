package services

import (
	"context"
	"time"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/nutrition"
	"github.com/foodlogr/backend/internal/store"
)

// ReportService builds multi-day rollups from stored day logs.
type ReportService struct {
	store store.Store
}

func NewReportService(s store.Store) *ReportService { return &ReportService{store: s} }

// Weekly rolls up the 7 calendar days ending at end (inclusive). Goals
// must be configured first; the resting-burn baseline comes from them.
// Days with no log count as zero intake but still burn resting energy.
func (s *ReportService) Weekly(ctx context.Context, userID string, end time.Time) (*model.WeeklyReport, error) {
	settings, err := retryValue(ctx, func() (*model.Settings, error) {
		return s.store.Settings().Get(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	start := end.AddDate(0, 0, -6)
	logs, err := retryValue(ctx, func() ([]model.DayLog, error) {
		return s.store.Days().GetRange(ctx, userID,
			start.Format(nutrition.DateLayout), end.Format(nutrition.DateLayout))
	})
	if err != nil {
		return nil, err
	}
	report := nutrition.WeeklyReport(logs, *settings, end)
	return &report, nil
}
