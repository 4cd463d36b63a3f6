// Package postgres is the production store driver, backed by database/sql
// over the pgx stdlib driver. Entry-list mutations lock the day-log row
// with SELECT ... FOR UPDATE so the read-modify-write is atomic per call.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
)

// Open opens a PostgreSQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap applies the schema. Statements are idempotent so this is safe
// to run on every start.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS settings (
            user_id TEXT PRIMARY KEY REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE CASCADE,
            calorie_goal INT NOT NULL,
            protein_goal DOUBLE PRECISION NOT NULL,
            carb_goal DOUBLE PRECISION NOT NULL,
            fat_goal DOUBLE PRECISION,
            resting_energy INT NOT NULL,
            update_time TIMESTAMPTZ NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS day_logs (
            user_id TEXT NOT NULL REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE CASCADE,
            log_date TEXT NOT NULL,
            entries JSONB NOT NULL DEFAULT '[]',
            update_time TIMESTAMPTZ NOT NULL,
            PRIMARY KEY(user_id, log_date)
        );`,
		`CREATE TABLE IF NOT EXISTS cache_items (
            user_id TEXT NOT NULL REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE CASCADE,
            name_key TEXT NOT NULL,
            item_id TEXT NOT NULL,
            name TEXT NOT NULL,
            description TEXT,
            calories INT NOT NULL,
            protein DOUBLE PRECISION NOT NULL,
            carbs DOUBLE PRECISION NOT NULL,
            fat DOUBLE PRECISION NOT NULL,
            use_count INT NOT NULL DEFAULT 0,
            last_used TIMESTAMPTZ NOT NULL,
            PRIMARY KEY(user_id, name_key)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// New constructs a Postgres-backed store.
func New(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users           { return &users{db: s.db} }
func (s *pgStore) Settings() store.UserSettings { return &settings{db: s.db} }
func (s *pgStore) Days() store.DayLogs          { return &days{db: s.db} }
func (s *pgStore) Cache() store.FoodCache       { return &cache{db: s.db} }

func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, model.ErrStorageUnavailable, err)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func requirePartition(ctx context.Context, q querier, userID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM users WHERE user_id=$1`, userID).Scan(&one)
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
	var created time.Time
	err := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email) VALUES ($1,$2)
        RETURNING creation_time
    `, m.UserID, m.Email).Scan(&created)
	if err != nil {
		return nil, storageErr("create user", err)
	}
	out := *m
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	err := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, creation_time FROM users WHERE user_id=$1
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
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return storageErr("rekey begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requirePartition(ctx, tx, oldUserID); err != nil {
		return err
	}
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE user_id=$1`, newUserID).Scan(&one)
	if err == nil {
		return fmt.Errorf("%w: identity already in use", model.ErrValidation)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return storageErr("rekey check", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET user_id=$1 WHERE user_id=$2`, newUserID, oldUserID); err != nil {
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
        FROM settings WHERE user_id=$1
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
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (user_id) DO UPDATE SET
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
	var raw []byte
	var updated time.Time
	err := d.db.QueryRowContext(ctx, `
        SELECT entries, update_time FROM day_logs WHERE user_id=$1 AND log_date=$2
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
        WHERE user_id=$1 AND log_date>=$2 AND log_date<=$3
        ORDER BY log_date
    `, userID, start, end)
	if err != nil {
		return nil, storageErr("get day range", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.DayLog
	for rows.Next() {
		var date string
		var raw []byte
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

// mutate ensures the day-log row exists, locks it, applies fn to the entry
// list, and writes the result back in one transaction.
func (d *days) mutate(ctx context.Context, userID, date string, fn func([]model.FoodEntry) []model.FoodEntry) (*model.DayLog, error) {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, storageErr("day log begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requirePartition(ctx, tx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO day_logs (user_id, log_date, entries, update_time) VALUES ($1,$2,'[]',$3)
        ON CONFLICT (user_id, log_date) DO NOTHING
    `, userID, date, now); err != nil {
		return nil, storageErr("day log ensure", err)
	}

	var raw []byte
	if err := tx.QueryRowContext(ctx, `
        SELECT entries FROM day_logs WHERE user_id=$1 AND log_date=$2 FOR UPDATE
    `, userID, date).Scan(&raw); err != nil {
		return nil, storageErr("day log read", err)
	}

	var entries []model.FoodEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
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
        UPDATE day_logs SET entries=$1, update_time=$2 WHERE user_id=$3 AND log_date=$4
    `, buf, now, userID, date); err != nil {
		return nil, storageErr("day log write", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("day log commit", err)
	}
	return &model.DayLog{Date: date, Entries: entries, UpdateTime: now}, nil
}

func decodeDayLog(date string, raw []byte, updated time.Time) (*model.DayLog, error) {
	var entries []model.FoodEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
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
        WHERE user_id=$1 AND name_key LIKE '%' || $2 || '%' ESCAPE '\'
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
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
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
        FROM cache_items WHERE user_id=$1 AND name_key=$2 FOR UPDATE
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
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
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
            UPDATE cache_items SET use_count=$1, last_used=$2 WHERE user_id=$3 AND name_key=$4
        `, existing.UseCount, now, userID, key); err != nil {
			return nil, storageErr("touch cache item", err)
		}
		item = existing
	default:
		item.ID = existing.ID
		item.UseCount = existing.UseCount
		item.LastUsed = now
		if _, err := tx.ExecContext(ctx, `
            UPDATE cache_items SET name=$1, description=$2, calories=$3, protein=$4, carbs=$5, fat=$6, last_used=$7
            WHERE user_id=$8 AND name_key=$9
        `, item.Name, item.Description, item.Calories, item.Protein, item.Carbs, item.Fat, now, userID, key); err != nil {
			return nil, storageErr("update cache item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("cache commit", err)
	}
	return &item, nil
}
