package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
	"github.com/foodlogr/backend/internal/store/storetest"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "foodlogr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestSqliteStore_Compliance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestSqliteStore_ConcurrentUpsertsDistinctIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const userID = "cafebabecafebabecafebabecafebabe"
	_, err := s.Users().Create(ctx, &model.User{UserID: userID, Email: "c@example.test"})
	require.NoError(t, err)

	const date = "2026-02-10"
	const workers = 16

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := model.FoodEntry{
				ID:       fmt.Sprintf("entry-%02d", i),
				Name:     fmt.Sprintf("meal %d", i),
				Calories: 100 + i,
			}
			_, errs[i] = s.Days().UpsertEntry(ctx, userID, date, entry)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	// Every concurrent write survived: no stale overwrite of the list.
	log, err := s.Days().Get(ctx, userID, date)
	require.NoError(t, err)
	assert.Len(t, log.Entries, workers)

	seen := make(map[string]bool)
	for _, e := range log.Entries {
		seen[e.ID] = true
	}
	for i := 0; i < workers; i++ {
		assert.True(t, seen[fmt.Sprintf("entry-%02d", i)], "entry %d missing", i)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cappuccino", "cappuccino"},
		{"  Iced   Coffee ", "iced coffee"},
		{"GREEK yogurt", "greek yogurt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, store.NormalizeName(tt.in))
	}
}
