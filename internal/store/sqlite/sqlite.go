// Package sqlite is the embedded store driver used for local runs and
// tests. Day logs are kept as one JSON entry-list document per user/date;
// entry mutations re-read and rewrite that document inside an immediate
// transaction so concurrent calls never clobber each other.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
)

// New constructs a SQLite-backed store.
func New(db *sql.DB) store.Store { return &sqlStore{db: db} }

type sqlStore struct{ db *sql.DB }

func (s *sqlStore) Users() store.Users           { return &users{db: s.db} }
func (s *sqlStore) Settings() store.UserSettings { return &settings{db: s.db} }
func (s *sqlStore) Days() store.DayLogs          { return &days{db: s.db} }
func (s *sqlStore) Cache() store.FoodCache       { return &cache{db: s.db} }

func (s *sqlStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func storageErr(op string, err error) error {
	// Detail stays out of user-facing payloads; the API layer only maps
	// the sentinel.
	return fmt.Errorf("%s: %w: %v", op, model.ErrStorageUnavailable, err)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func requirePartition(ctx context.Context, q querier, userID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM users WHERE user_id=?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrUnknownPartition
	}
	if err != nil {
		return storageErr("check partition", err)
	}
	return nil
}

// --- users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, creation_time) VALUES (?,?,?)
    `, m.UserID, m.Email, now)
	if err != nil {
		return nil, storageErr("create user", err)
	}
	out := *m
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	err := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, creation_time FROM users WHERE user_id=?
    `, userID).Scan(&out.UserID, &out.Email, &out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get user", err)
	}
	return &out, nil
}

func (u *users) Exists(ctx context.Context, userID string) (bool, error) {
	err := requirePartition(ctx, u.db, userID)
	if errors.Is(err, model.ErrUnknownPartition) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (u *users) Rekey(ctx context.Context, oldUserID, newUserID string) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("rekey begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requirePartition(ctx, tx, oldUserID); err != nil {
		return err
	}
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE user_id=?`, newUserID).Scan(&one)
	if err == nil {
		return fmt.Errorf("%w: identity already in use", model.ErrValidation)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return storageErr("rekey check", err)
	}

	// ON UPDATE CASCADE carries settings, day logs and cache items along.
	if _, err := tx.ExecContext(ctx, `UPDATE users SET user_id=? WHERE user_id=?`, newUserID, oldUserID); err != nil {
		return storageErr("rekey", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("rekey commit", err)
	}
	return nil
}

// --- settings ---

type settings struct{ db *sql.DB }

func (s *settings) Get(ctx context.Context, userID string) (*model.Settings, error) {
	if err := requirePartition(ctx, s.db, userID); err != nil {
		return nil, err
	}
	var out model.Settings
	err := s.db.QueryRowContext(ctx, `
        SELECT calorie_goal, protein_goal, carb_goal, fat_goal, resting_energy, update_time
        FROM settings WHERE user_id=?
    `, userID).Scan(&out.CalorieGoal, &out.ProteinGoal, &out.CarbGoal, &out.FatGoal, &out.RestingEnergy, &out.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get settings", err)
	}
	return &out, nil
}

func (s *settings) Put(ctx context.Context, userID string, in model.Settings) error {
	if err := requirePartition(ctx, s.db, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO settings (user_id, calorie_goal, protein_goal, carb_goal, fat_goal, resting_energy, update_time)
        VALUES (?,?,?,?,?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET
            calorie_goal=excluded.calorie_goal,
            protein_goal=excluded.protein_goal,
            carb_goal=excluded.carb_goal,
            fat_goal=excluded.fat_goal,
            resting_energy=excluded.resting_energy,
            update_time=excluded.update_time
    `, userID, in.CalorieGoal, in.ProteinGoal, in.CarbGoal, in.FatGoal, in.RestingEnergy, time.Now().UTC())
	if err != nil {
		return storageErr("put settings", err)
	}
	return nil
}

// --- day logs ---

type days struct{ db *sql.DB }

func (d *days) Get(ctx context.Context, userID, date string) (*model.DayLog, error) {
	if err := requirePartition(ctx, d.db, userID); err != nil {
		return nil, err
	}
	var raw string
	var updated time.Time
	err := d.db.QueryRowContext(ctx, `
        SELECT entries, update_time FROM day_logs WHERE user_id=? AND log_date=?
    `, userID, date).Scan(&raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.DayLog{Date: date, Entries: []model.FoodEntry{}}, nil
	}
	if err != nil {
		return nil, storageErr("get day log", err)
	}
	return decodeDayLog(date, raw, updated)
}

func (d *days) GetRange(ctx context.Context, userID, start, end string) ([]model.DayLog, error) {
	if err := requirePartition(ctx, d.db, userID); err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx, `
        SELECT log_date, entries, update_time FROM day_logs
        WHERE user_id=? AND log_date>=? AND log_date<=?
        ORDER BY log_date
    `, userID, start, end)
	if err != nil {
		return nil, storageErr("get day range", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.DayLog
	for rows.Next() {
		var date, raw string
		var updated time.Time
		if err := rows.Scan(&date, &raw, &updated); err != nil {
			return nil, storageErr("scan day log", err)
		}
		log, err := decodeDayLog(date, raw, updated)
		if err != nil {
			return nil, err
		}
		out = append(out, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate day logs", err)
	}
	return out, nil
}

func (d *days) UpsertEntry(ctx context.Context, userID, date string, entry model.FoodEntry) (*model.DayLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return d.mutate(ctx, userID, date, func(entries []model.FoodEntry) []model.FoodEntry {
		for i := range entries {
			if entries[i].ID == entry.ID {
				entries[i] = entry
				return entries
			}
		}
		return append(entries, entry)
	})
}

func (d *days) DeleteEntry(ctx context.Context, userID, date, entryID string) (*model.DayLog, error) {
	return d.mutate(ctx, userID, date, func(entries []model.FoodEntry) []model.FoodEntry {
		out := entries[:0]
		for _, e := range entries {
			if e.ID != entryID {
				out = append(out, e)
			}
		}
		return out
	})
}

// mutate runs a transactional read-modify-write on one day's entry list.
// The row is created empty first so the subsequent update always targets an
// existing document and concurrent mutations serialize on it.
func (d *days) mutate(ctx context.Context, userID, date string, fn func([]model.FoodEntry) []model.FoodEntry) (*model.DayLog, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("day log begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requirePartition(ctx, tx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO day_logs (user_id, log_date, entries, update_time) VALUES (?,?,'[]',?)
        ON CONFLICT(user_id, log_date) DO NOTHING
    `, userID, date, now); err != nil {
		return nil, storageErr("day log ensure", err)
	}

	var raw string
	if err := tx.QueryRowContext(ctx, `
        SELECT entries FROM day_logs WHERE user_id=? AND log_date=?
    `, userID, date).Scan(&raw); err != nil {
		return nil, storageErr("day log read", err)
	}

	var entries []model.FoodEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, storageErr("day log decode", err)
	}
	entries = fn(entries)
	if entries == nil {
		entries = []model.FoodEntry{}
	}

	buf, err := json.Marshal(entries)
	if err != nil {
		return nil, storageErr("day log encode", err)
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE day_logs SET entries=?, update_time=? WHERE user_id=? AND log_date=?
    `, string(buf), now, userID, date); err != nil {
		return nil, storageErr("day log write", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("day log commit", err)
	}
	return &model.DayLog{Date: date, Entries: entries, UpdateTime: now}, nil
}

func decodeDayLog(date, raw string, updated time.Time) (*model.DayLog, error) {
	var entries []model.FoodEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, storageErr("decode day log", err)
	}
	if entries == nil {
		entries = []model.FoodEntry{}
	}
	return &model.DayLog{Date: date, Entries: entries, UpdateTime: updated}, nil
}

// --- cache ---

type cache struct{ db *sql.DB }

func (c *cache) List(ctx context.Context, userID, query string) ([]model.CacheItem, error) {
	if err := requirePartition(ctx, c.db, userID); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, `
        SELECT item_id, name, description, calories, protein, carbs, fat, use_count, last_used
        FROM cache_items
        WHERE user_id=? AND name_key LIKE '%' || ? || '%' ESCAPE '\'
        ORDER BY use_count DESC, name ASC
    `, userID, store.EscapeLike(store.NormalizeName(query)))
	if err != nil {
		return nil, storageErr("list cache", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CacheItem
	for rows.Next() {
		var item model.CacheItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Calories,
			&item.Protein, &item.Carbs, &item.Fat, &item.UseCount, &item.LastUsed); err != nil {
			return nil, storageErr("scan cache item", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate cache items", err)
	}
	return out, nil
}

func (c *cache) Upsert(ctx context.Context, userID string, item model.CacheItem, reuse bool) (*model.CacheItem, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("cache begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requirePartition(ctx, tx, userID); err != nil {
		return nil, err
	}

	key := store.NormalizeName(item.Name)
	now := time.Now().UTC()

	var existing model.CacheItem
	err = tx.QueryRowContext(ctx, `
        SELECT item_id, name, description, calories, protein, carbs, fat, use_count
        FROM cache_items WHERE user_id=? AND name_key=?
    `, userID, key).Scan(&existing.ID, &existing.Name, &existing.Description,
		&existing.Calories, &existing.Protein, &existing.Carbs, &existing.Fat, &existing.UseCount)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if reuse {
			item.UseCount = 1
		}
		item.LastUsed = now
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO cache_items (user_id, name_key, item_id, name, description, calories, protein, carbs, fat, use_count, last_used)
            VALUES (?,?,?,?,?,?,?,?,?,?,?)
        `, userID, key, item.ID, item.Name, item.Description, item.Calories,
			item.Protein, item.Carbs, item.Fat, item.UseCount, now); err != nil {
			return nil, storageErr("insert cache item", err)
		}
	case err != nil:
		return nil, storageErr("read cache item", err)
	case reuse:
		existing.UseCount++
		existing.LastUsed = now
		if _, err := tx.ExecContext(ctx, `
            UPDATE cache_items SET use_count=?, last_used=? WHERE user_id=? AND name_key=?
        `, existing.UseCount, now, userID, key); err != nil {
			return nil, storageErr("touch cache item", err)
		}
		item = existing
	default:
		item.ID = existing.ID
		item.UseCount = existing.UseCount
		item.LastUsed = now
		if _, err := tx.ExecContext(ctx, `
            UPDATE cache_items SET name=?, description=?, calories=?, protein=?, carbs=?, fat=?, last_used=?
            WHERE user_id=? AND name_key=?
        `, item.Name, item.Description, item.Calories, item.Protein, item.Carbs, item.Fat, now, userID, key); err != nil {
			return nil, storageErr("update cache item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("cache commit", err)
	}
	return &item, nil
}
