package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/foodlogr/backend/internal/api/cors"
	"github.com/foodlogr/backend/internal/api/recovery"
	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/services"
	"github.com/foodlogr/backend/internal/store"
)

// dateRe constrains day-log paths to ISO dates before handlers run.
const dateRe = "{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}"

// RouterConfig carries the knobs the router needs beyond its services.
type RouterConfig struct {
	AllowedOrigins []string
	// BaseURL appears in the registration setup command.
	BaseURL string
	// MCPHandler, when set, is mounted at /mcp behind no extra middleware;
	// the MCP server does its own credential handling.
	MCPHandler http.Handler
}

// NewRouter wires the full REST surface. Everything under /api requires a
// bearer credential; registration, validation, and health do not.
//
// CORS and panic recovery wrap the router from the outside so preflight
// requests are answered even for paths mux would otherwise reject.
func NewRouter(s store.Store, log zerolog.Logger, cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	authSvc := services.NewAuthService(s)
	logSvc := services.NewFoodLogService(s)
	reportSvc := services.NewReportService(s)

	healthHandler := NewHealthHandler(s)
	authHandler := NewAuthHandler(authSvc, cfg.BaseURL)
	settingsHandler := NewSettingsHandler(logSvc)
	logHandler := NewLogHandler(logSvc)
	cacheHandler := NewCacheHandler(logSvc)
	reportHandler := NewReportHandler(reportSvc)

	router.HandleFunc("/health", healthHandler.CheckHealth).Methods("GET")

	router.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/auth/validate", authHandler.Validate).Methods("POST")
	router.HandleFunc("/auth/rotate", authHandler.Rotate).Methods("POST")

	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(auth.NewAuthorizer(authSvc), log))

	authed.HandleFunc("/settings", settingsHandler.Get).Methods("GET")
	authed.HandleFunc("/settings", settingsHandler.Put).Methods("PUT")

	authed.HandleFunc("/logs/"+dateRe, logHandler.GetDay).Methods("GET")
	authed.HandleFunc("/logs/"+dateRe+"/summary", logHandler.GetSummary).Methods("GET")
	authed.HandleFunc("/logs/"+dateRe+"/entries", logHandler.CreateEntry).Methods("POST")
	authed.HandleFunc("/logs/"+dateRe+"/entries/{entryId}", logHandler.PutEntry).Methods("PUT")
	authed.HandleFunc("/logs/"+dateRe+"/entries/{entryId}", logHandler.DeleteEntry).Methods("DELETE")

	authed.HandleFunc("/cache", cacheHandler.Search).Methods("GET")
	authed.HandleFunc("/cache", cacheHandler.Put).Methods("PUT")

	authed.HandleFunc("/reports/weekly", reportHandler.Weekly).Methods("GET")

	if cfg.MCPHandler != nil {
		router.PathPrefix("/mcp").Handler(cfg.MCPHandler)
	}

	return recovery.Middleware(cors.Middleware(cfg.AllowedOrigins)(router))
}
