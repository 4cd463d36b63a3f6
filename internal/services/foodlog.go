package services

import (
	"context"
	"fmt"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/nutrition"
	"github.com/foodlogr/backend/internal/store"
	"github.com/foodlogr/backend/internal/validate"
)

// FoodLogService covers goals, day logs, and the food cache. Every method
// takes the caller's verified identity explicitly.
type FoodLogService struct {
	store store.Store
}

func NewFoodLogService(s store.Store) *FoodLogService { return &FoodLogService{store: s} }

// SetupUser fully replaces the user's goals. Running it again overwrites
// the previous document, including clearing an optional fat goal that the
// new payload omits.
func (s *FoodLogService) SetupUser(ctx context.Context, userID string, settings model.Settings) error {
	if err := validate.Settings(settings); err != nil {
		return err
	}
	return withRetry(ctx, func() error {
		return s.store.Settings().Put(ctx, userID, settings)
	})
}

// GetSettings returns model.ErrNotFound until SetupUser has run.
func (s *FoodLogService) GetSettings(ctx context.Context, userID string) (*model.Settings, error) {
	return retryValue(ctx, func() (*model.Settings, error) {
		return s.store.Settings().Get(ctx, userID)
	})
}

// LogEntry appends a new entry, or replaces one in place when the entry
// carries an existing ID. When calories are omitted but macros are
// present, calories are estimated with the 4/4/9 conversion.
func (s *FoodLogService) LogEntry(ctx context.Context, userID, date string, entry model.FoodEntry) (*model.DayLog, error) {
	if err := validate.Date(date); err != nil {
		return nil, err
	}
	if err := validate.Entry(entry); err != nil {
		return nil, err
	}
	if entry.Calories == 0 && (entry.Protein > 0 || entry.Carbs > 0 || entry.Fat > 0) {
		entry.Calories = nutrition.CaloriesFromMacros(entry.Protein, entry.Carbs, entry.Fat)
	}
	return retryValue(ctx, func() (*model.DayLog, error) {
		return s.store.Days().UpsertEntry(ctx, userID, date, entry)
	})
}

// EntryPatch carries the fields of a partial entry update. Nil fields are
// left unchanged.
type EntryPatch struct {
	Name        *string
	Description *string
	Calories    *int
	Protein     *float64
	Carbs       *float64
	Fat         *float64
}

// UpdateEntry applies a patch to an existing entry. Unknown entry IDs fail
// with model.ErrNotFound; updates never create entries.
func (s *FoodLogService) UpdateEntry(ctx context.Context, userID, date, entryID string, patch EntryPatch) (*model.DayLog, error) {
	if err := validate.Date(date); err != nil {
		return nil, err
	}
	log, err := retryValue(ctx, func() (*model.DayLog, error) {
		return s.store.Days().Get(ctx, userID, date)
	})
	if err != nil {
		return nil, err
	}
	var current *model.FoodEntry
	for i := range log.Entries {
		if log.Entries[i].ID == entryID {
			current = &log.Entries[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("entry %q on %s: %w", entryID, date, model.ErrNotFound)
	}

	updated := *current
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = patch.Description
	}
	if patch.Calories != nil {
		updated.Calories = *patch.Calories
	}
	if patch.Protein != nil {
		updated.Protein = *patch.Protein
	}
	if patch.Carbs != nil {
		updated.Carbs = *patch.Carbs
	}
	if patch.Fat != nil {
		updated.Fat = *patch.Fat
	}
	if err := validate.Entry(updated); err != nil {
		return nil, err
	}
	return retryValue(ctx, func() (*model.DayLog, error) {
		return s.store.Days().UpsertEntry(ctx, userID, date, updated)
	})
}

// DeleteEntry removes an entry by ID. Deleting an absent ID is a no-op.
func (s *FoodLogService) DeleteEntry(ctx context.Context, userID, date, entryID string) (*model.DayLog, error) {
	if err := validate.Date(date); err != nil {
		return nil, err
	}
	return retryValue(ctx, func() (*model.DayLog, error) {
		return s.store.Days().DeleteEntry(ctx, userID, date, entryID)
	})
}

// GetDay returns the log for one date; an empty log when nothing was
// recorded.
func (s *FoodLogService) GetDay(ctx context.Context, userID, date string) (*model.DayLog, error) {
	if err := validate.Date(date); err != nil {
		return nil, err
	}
	return retryValue(ctx, func() (*model.DayLog, error) {
		return s.store.Days().Get(ctx, userID, date)
	})
}

// GetDaySummary totals one day against the user's goals. It requires
// SetupUser to have run, since there are no goals to compare against
// otherwise.
func (s *FoodLogService) GetDaySummary(ctx context.Context, userID, date string) (*model.DailySummary, error) {
	if err := validate.Date(date); err != nil {
		return nil, err
	}
	settings, err := retryValue(ctx, func() (*model.Settings, error) {
		return s.store.Settings().Get(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	log, err := retryValue(ctx, func() (*model.DayLog, error) {
		return s.store.Days().Get(ctx, userID, date)
	})
	if err != nil {
		return nil, err
	}
	summary := nutrition.DailySummary(log.Entries, *settings)
	return &summary, nil
}

// SearchCache matches query as a case-insensitive substring of the
// cached name, most-used first.
func (s *FoodLogService) SearchCache(ctx context.Context, userID, query string) ([]model.CacheItem, error) {
	return retryValue(ctx, func() ([]model.CacheItem, error) {
		return s.store.Cache().List(ctx, userID, query)
	})
}

// SaveCacheItem inserts or updates a reusable food definition. With reuse
// set, an existing item only advances its use counter; otherwise the
// caller's macro values replace the stored ones.
func (s *FoodLogService) SaveCacheItem(ctx context.Context, userID string, item model.CacheItem, reuse bool) (*model.CacheItem, error) {
	if err := validate.CacheItem(item); err != nil {
		return nil, err
	}
	if item.Calories == 0 && (item.Protein > 0 || item.Carbs > 0 || item.Fat > 0) {
		item.Calories = nutrition.CaloriesFromMacros(item.Protein, item.Carbs, item.Fat)
	}
	return retryValue(ctx, func() (*model.CacheItem, error) {
		return s.store.Cache().Upsert(ctx, userID, item, reuse)
	})
}
