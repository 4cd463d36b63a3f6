// Package store defines the partitioned persistence interface. Every
// operation is scoped by an explicit userID argument, never inferred from
// ambient state, and implementations confine each call to that single
// user's partition. Drivers live under internal/store/<driver>/.
package store

import (
	"context"
	"strings"

	"github.com/foodlogr/backend/internal/model"
)

// Store exposes the per-user partitions required by the services.
type Store interface {
	Users() Users
	Settings() UserSettings
	Days() DayLogs
	Cache() FoodCache

	// HealthPing reports connectivity to the underlying database.
	HealthPing(ctx context.Context) error
}

// Users manages partition presence records.
type Users interface {
	// Create writes the presence record for a new identity. This is the
	// only write registration performs.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	Exists(ctx context.Context, userID string) (bool, error)

	// Rekey atomically moves an entire partition to a new identity,
	// invalidating the credential the old identity was derived from.
	Rekey(ctx context.Context, oldUserID, newUserID string) error
}

// UserSettings stores one goals document per user.
type UserSettings interface {
	// Get returns model.ErrNotFound when the user has not run setup yet.
	Get(ctx context.Context, userID string) (*model.Settings, error)
	// Put fully replaces the settings document. Idempotent.
	Put(ctx context.Context, userID string, s model.Settings) error
}

// DayLogs stores one entry-list document per user per calendar date.
// Date strings use the ISO YYYY-MM-DD form.
type DayLogs interface {
	// Get returns an empty log (not an error) for dates with no entries.
	Get(ctx context.Context, userID, date string) (*model.DayLog, error)
	// GetRange returns the logs present between start and end inclusive,
	// ordered by date. Absent days are simply omitted.
	GetRange(ctx context.Context, userID, start, end string) ([]model.DayLog, error)

	// UpsertEntry replaces the entry with the same ID in place, or appends
	// when the ID is new. The read-modify-write is transactional per call
	// so concurrent upserts for distinct IDs on the same day both survive.
	// Idempotent under retry with the same entry ID.
	UpsertEntry(ctx context.Context, userID, date string, entry model.FoodEntry) (*model.DayLog, error)

	// DeleteEntry removes the entry by ID; deleting an absent ID is a
	// no-op, not an error.
	DeleteEntry(ctx context.Context, userID, date, entryID string) (*model.DayLog, error)
}

// FoodCache stores reusable food definitions, keyed per user by
// normalized name.
type FoodCache interface {
	// List matches query as a case-insensitive substring of the name,
	// ordered by descending use count then name.
	List(ctx context.Context, userID, query string) ([]model.CacheItem, error)

	// Upsert inserts or updates the item at its normalized name. When
	// reuse is set and the item exists, only the use counter and last-used
	// time advance; otherwise the caller's macro values win.
	Upsert(ctx context.Context, userID string, item model.CacheItem, reuse bool) (*model.CacheItem, error)
}

// NormalizeName is the cache key derivation shared by all drivers:
// lowercase with whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters so a search term matches as a
// literal substring. Drivers pair the result with ESCAPE '\'.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}
