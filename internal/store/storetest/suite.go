// Package storetest holds a compliance suite that every store driver must
// pass. Drivers call Run from their own tests with a factory returning a
// clean, isolated store.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
)

func newUserID() string {
	// Same shape as a derived identity: 32 hex chars.
	u := uuid.New()
	return u.String()[:8] + u.String()[9:13] + u.String()[14:18] + u.String()[19:23] + u.String()[24:]
}

// Run exercises the partition-isolation and idempotence contract against a
// store.Store implementation.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := newUserID()
	if _, err := s.Users().Create(ctx, &model.User{UserID: userID, Email: "owner@example.test"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	t.Run("users", func(t *testing.T) { testUsers(t, s, userID) })
	t.Run("unknown partition", func(t *testing.T) { testUnknownPartition(t, s) })
	t.Run("settings", func(t *testing.T) { testSettings(t, s, userID) })
	t.Run("day logs", func(t *testing.T) { testDayLogs(t, s, userID) })
	t.Run("cache", func(t *testing.T) { testCache(t, s, userID) })
	t.Run("rekey", func(t *testing.T) { testRekey(t, makeStore(t)) })
}

func testUsers(t *testing.T, s store.Store, userID string) {
	ctx := context.Background()

	got, err := s.Users().Get(ctx, userID)
	if err != nil || got.UserID != userID || got.Email != "owner@example.test" {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got.CreationTime.IsZero() {
		t.Fatalf("GetUser: creation time not set")
	}

	exists, err := s.Users().Exists(ctx, userID)
	if err != nil || !exists {
		t.Fatalf("Exists(registered): exists=%v err=%v", exists, err)
	}
	exists, err = s.Users().Exists(ctx, newUserID())
	if err != nil || exists {
		t.Fatalf("Exists(unregistered): exists=%v err=%v", exists, err)
	}

	if _, err := s.Users().Get(ctx, newUserID()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser(unregistered): want ErrNotFound, got %v", err)
	}
}

func testUnknownPartition(t *testing.T, s store.Store) {
	ctx := context.Background()
	ghost := newUserID()

	if _, err := s.Settings().Get(ctx, ghost); !errors.Is(err, model.ErrUnknownPartition) {
		t.Fatalf("Settings.Get ghost: want ErrUnknownPartition, got %v", err)
	}
	if err := s.Settings().Put(ctx, ghost, model.Settings{CalorieGoal: 2000}); !errors.Is(err, model.ErrUnknownPartition) {
		t.Fatalf("Settings.Put ghost: want ErrUnknownPartition, got %v", err)
	}
	if _, err := s.Days().Get(ctx, ghost, "2026-01-01"); !errors.Is(err, model.ErrUnknownPartition) {
		t.Fatalf("Days.Get ghost: want ErrUnknownPartition, got %v", err)
	}
	if _, err := s.Days().UpsertEntry(ctx, ghost, "2026-01-01", model.FoodEntry{Name: "x"}); !errors.Is(err, model.ErrUnknownPartition) {
		t.Fatalf("Days.UpsertEntry ghost: want ErrUnknownPartition, got %v", err)
	}
	if _, err := s.Cache().List(ctx, ghost, ""); !errors.Is(err, model.ErrUnknownPartition) {
		t.Fatalf("Cache.List ghost: want ErrUnknownPartition, got %v", err)
	}
}

func testSettings(t *testing.T, s store.Store, userID string) {
	ctx := context.Background()

	if _, err := s.Settings().Get(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Settings.Get before setup: want ErrNotFound, got %v", err)
	}

	fatGoal := 70.0
	in := model.Settings{CalorieGoal: 2000, ProteinGoal: 150, CarbGoal: 200, FatGoal: &fatGoal, RestingEnergy: 1800}
	if err := s.Settings().Put(ctx, userID, in); err != nil {
		t.Fatalf("Settings.Put: %v", err)
	}
	got, err := s.Settings().Get(ctx, userID)
	if err != nil {
		t.Fatalf("Settings.Get: %v", err)
	}
	if got.CalorieGoal != 2000 || got.RestingEnergy != 1800 || got.FatGoal == nil || *got.FatGoal != 70 {
		t.Fatalf("Settings.Get: unexpected %+v", got)
	}

	// Full replace: dropping the fat goal clears it.
	in.FatGoal = nil
	in.CalorieGoal = 1900
	if err := s.Settings().Put(ctx, userID, in); err != nil {
		t.Fatalf("Settings.Put replace: %v", err)
	}
	got, err = s.Settings().Get(ctx, userID)
	if err != nil || got.CalorieGoal != 1900 || got.FatGoal != nil {
		t.Fatalf("Settings replace: got=%+v err=%v", got, err)
	}
}

func testDayLogs(t *testing.T, s store.Store, userID string) {
	ctx := context.Background()
	const date = "2026-02-10"

	// Lazily-created days read back empty, never as an error.
	log, err := s.Days().Get(ctx, userID, date)
	if err != nil || len(log.Entries) != 0 {
		t.Fatalf("Days.Get empty: log=%+v err=%v", log, err)
	}

	e1 := model.FoodEntry{Name: "oatmeal", Calories: 300, Protein: 10, Carbs: 50, Fat: 6}
	log, err = s.Days().UpsertEntry(ctx, userID, date, e1)
	if err != nil || len(log.Entries) != 1 {
		t.Fatalf("UpsertEntry append: log=%+v err=%v", log, err)
	}
	id1 := log.Entries[0].ID
	if id1 == "" {
		t.Fatalf("UpsertEntry: no ID assigned")
	}

	e2 := model.FoodEntry{Name: "coffee", Calories: 5}
	log, err = s.Days().UpsertEntry(ctx, userID, date, e2)
	if err != nil || len(log.Entries) != 2 {
		t.Fatalf("UpsertEntry second: log=%+v err=%v", log, err)
	}

	// Same ID, new values: replaced in place, count and position unchanged.
	e1b := model.FoodEntry{ID: id1, Name: "oatmeal with honey", Calories: 360, Protein: 10, Carbs: 62, Fat: 6}
	log, err = s.Days().UpsertEntry(ctx, userID, date, e1b)
	if err != nil || len(log.Entries) != 2 {
		t.Fatalf("UpsertEntry idempotent: log=%+v err=%v", log, err)
	}
	if log.Entries[0].ID != id1 || log.Entries[0].Calories != 360 {
		t.Fatalf("UpsertEntry idempotent: position or values wrong: %+v", log.Entries)
	}

	// Deleting a nonexistent ID is a no-op.
	log, err = s.Days().DeleteEntry(ctx, userID, date, "no-such-entry")
	if err != nil || len(log.Entries) != 2 {
		t.Fatalf("DeleteEntry absent: log=%+v err=%v", log, err)
	}

	log, err = s.Days().DeleteEntry(ctx, userID, date, id1)
	if err != nil || len(log.Entries) != 1 || log.Entries[0].Name != "coffee" {
		t.Fatalf("DeleteEntry: log=%+v err=%v", log, err)
	}

	// Range reads return present days in order, omitting absent ones.
	if _, err := s.Days().UpsertEntry(ctx, userID, "2026-02-12", model.FoodEntry{Name: "soup", Calories: 200}); err != nil {
		t.Fatalf("UpsertEntry other day: %v", err)
	}
	logs, err := s.Days().GetRange(ctx, userID, "2026-02-09", "2026-02-13")
	if err != nil || len(logs) != 2 {
		t.Fatalf("GetRange: n=%d err=%v", len(logs), err)
	}
	if logs[0].Date != "2026-02-10" || logs[1].Date != "2026-02-12" {
		t.Fatalf("GetRange order: %+v", logs)
	}
}

func testCache(t *testing.T, s store.Store, userID string) {
	ctx := context.Background()

	item, err := s.Cache().Upsert(ctx, userID, model.CacheItem{Name: "Cappuccino", Calories: 80, Protein: 4, Carbs: 6, Fat: 4}, false)
	if err != nil || item.ID == "" || item.UseCount != 0 {
		t.Fatalf("Cache.Upsert new: item=%+v err=%v", item, err)
	}

	// Reuse twice: counter advances, values stay.
	for want := 1; want <= 2; want++ {
		item, err = s.Cache().Upsert(ctx, userID, model.CacheItem{Name: "cappuccino"}, true)
		if err != nil || item.UseCount != want || item.Calories != 80 {
			t.Fatalf("Cache.Upsert reuse: item=%+v err=%v", item, err)
		}
	}

	// Non-reuse overwrite: caller values win, counter preserved.
	item, err = s.Cache().Upsert(ctx, userID, model.CacheItem{Name: "Cappuccino", Calories: 95, Protein: 5, Carbs: 7, Fat: 5}, false)
	if err != nil || item.Calories != 95 || item.UseCount != 2 {
		t.Fatalf("Cache.Upsert overwrite: item=%+v err=%v", item, err)
	}

	if _, err := s.Cache().Upsert(ctx, userID, model.CacheItem{Name: "Iced Coffee", Calories: 15}, false); err != nil {
		t.Fatalf("Cache.Upsert second: %v", err)
	}

	// Case-insensitive substring match, ordered by use count then name.
	items, err := s.Cache().List(ctx, userID, "COFF")
	if err != nil || len(items) != 1 || items[0].Name != "Iced Coffee" {
		t.Fatalf("Cache.List substring: items=%+v err=%v", items, err)
	}
	items, err = s.Cache().List(ctx, userID, "c")
	if err != nil || len(items) != 2 {
		t.Fatalf("Cache.List all: items=%+v err=%v", items, err)
	}
	if items[0].Name != "Cappuccino" {
		t.Fatalf("Cache.List order: want most-used first, got %+v", items)
	}

	// LIKE metacharacters in the search term match literally.
	if _, err := s.Cache().Upsert(ctx, userID, model.CacheItem{Name: "100% Whey", Calories: 120}, false); err != nil {
		t.Fatalf("Cache.Upsert whey: %v", err)
	}
	items, err = s.Cache().List(ctx, userID, "100%")
	if err != nil || len(items) != 1 || items[0].Name != "100% Whey" {
		t.Fatalf("Cache.List literal %%: items=%+v err=%v", items, err)
	}
	items, err = s.Cache().List(ctx, userID, "_")
	if err != nil || len(items) != 0 {
		t.Fatalf("Cache.List literal _: items=%+v err=%v", items, err)
	}
}

func testRekey(t *testing.T, s store.Store) {
	ctx := context.Background()

	oldID, newID := newUserID(), newUserID()
	if _, err := s.Users().Create(ctx, &model.User{UserID: oldID, Email: "rotate@example.test"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.Settings().Put(ctx, oldID, model.Settings{CalorieGoal: 2100, RestingEnergy: 1700}); err != nil {
		t.Fatalf("Settings.Put: %v", err)
	}
	if _, err := s.Days().UpsertEntry(ctx, oldID, "2026-02-10", model.FoodEntry{Name: "toast", Calories: 160}); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	if err := s.Users().Rekey(ctx, oldID, newID); err != nil {
		t.Fatalf("Rekey: %v", err)
	}

	// The old identity is gone; the data lives under the new one.
	if exists, _ := s.Users().Exists(ctx, oldID); exists {
		t.Fatalf("Rekey: old identity still present")
	}
	got, err := s.Settings().Get(ctx, newID)
	if err != nil || got.CalorieGoal != 2100 {
		t.Fatalf("Rekey settings: got=%+v err=%v", got, err)
	}
	log, err := s.Days().Get(ctx, newID, "2026-02-10")
	if err != nil || len(log.Entries) != 1 {
		t.Fatalf("Rekey day log: log=%+v err=%v", log, err)
	}

	// Rekeying an unknown identity fails.
	if err := s.Users().Rekey(ctx, newUserID(), newUserID()); !errors.Is(err, model.ErrUnknownPartition) {
		t.Fatalf("Rekey ghost: want ErrUnknownPartition, got %v", err)
	}
}
