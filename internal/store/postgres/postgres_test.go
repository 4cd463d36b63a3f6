package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
)

const testUserID = "deadbeefdeadbeefdeadbeefdeadbeef"

func newMockStore(t *testing.T) (store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func expectPartitionCheck(mock sqlmock.Sqlmock, exists bool) {
	q := mock.ExpectQuery(`SELECT 1 FROM users WHERE user_id=\$1`).WithArgs(testUserID)
	if exists {
		q.WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	} else {
		q.WillReturnError(sql.ErrNoRows)
	}
}

func TestUsersExists(t *testing.T) {
	s, mock := newMockStore(t)

	expectPartitionCheck(mock, true)
	exists, err := s.Users().Exists(context.Background(), testUserID)
	require.NoError(t, err)
	assert.True(t, exists)

	expectPartitionCheck(mock, false)
	exists, err = s.Users().Exists(context.Background(), testUserID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGet_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	expectPartitionCheck(mock, true)
	mock.ExpectQuery(`SELECT calorie_goal, protein_goal`).
		WithArgs(testUserID).
		WillReturnError(sql.ErrNoRows)

	_, err := s.Settings().Get(context.Background(), testUserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGet_UnknownPartition(t *testing.T) {
	s, mock := newMockStore(t)

	expectPartitionCheck(mock, false)
	_, err := s.Settings().Get(context.Background(), testUserID)
	assert.ErrorIs(t, err, model.ErrUnknownPartition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDaysGet_AbsentDayIsEmptyLog(t *testing.T) {
	s, mock := newMockStore(t)

	expectPartitionCheck(mock, true)
	mock.ExpectQuery(`SELECT entries, update_time FROM day_logs`).
		WithArgs(testUserID, "2026-02-10").
		WillReturnError(sql.ErrNoRows)

	log, err := s.Days().Get(context.Background(), testUserID, "2026-02-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-10", log.Date)
	assert.Empty(t, log.Entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDaysUpsertEntry_TransactionalReadModifyWrite(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	expectPartitionCheck(mock, true)
	mock.ExpectExec(`INSERT INTO day_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT entries FROM day_logs WHERE user_id=\$1 AND log_date=\$2 FOR UPDATE`).
		WithArgs(testUserID, "2026-02-10").
		WillReturnRows(sqlmock.NewRows([]string{"entries"}).
			AddRow(`[{"id":"e1","name":"oatmeal","calories":300,"protein":10,"carbs":50,"fat":6,"loggedAt":"2026-02-10T08:00:00Z"}]`))
	mock.ExpectExec(`UPDATE day_logs SET entries=\$1, update_time=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	log, err := s.Days().UpsertEntry(context.Background(), testUserID, "2026-02-10",
		model.FoodEntry{ID: "e2", Name: "coffee", Calories: 5, LoggedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Len(t, log.Entries, 2)
	assert.Equal(t, "e1", log.Entries[0].ID)
	assert.Equal(t, "e2", log.Entries[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageFaultMapsToStorageUnavailable(t *testing.T) {
	s, mock := newMockStore(t)

	expectPartitionCheck(mock, true)
	mock.ExpectQuery(`SELECT calorie_goal, protein_goal`).
		WithArgs(testUserID).
		WillReturnError(errors.New("connection refused"))

	_, err := s.Settings().Get(context.Background(), testUserID)
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	// The raw driver detail stays wrapped, never surfaced as a taxonomy kind.
	assert.NotErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
