package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
	"github.com/foodlogr/backend/internal/store/sqlite"
)

// outageStore wraps a real store with a Users partition whose lookups
// always fail with a storage fault.
type outageStore struct {
	store.Store
}

func (s outageStore) Users() store.Users { return outageUsers{s.Store.Users()} }

type outageUsers struct {
	store.Users
}

func (outageUsers) Exists(context.Context, string) (bool, error) {
	return false, fmt.Errorf("users exists: %w: dial tcp: connection refused", model.ErrStorageUnavailable)
}

func TestValidateDuringStorageOutageIsNotAVerdict(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "foodlogr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	router := NewRouter(outageStore{sqlite.New(db)}, zerolog.Nop(), RouterConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		BaseURL:        "http://localhost:8080",
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	key, err := auth.GenerateAPIKey()
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/validate", "", map[string]string{"credential": key})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, string(body))

	var out struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), out.Error)
	assert.Equal(t, http.StatusServiceUnavailable, out.Code)
}
