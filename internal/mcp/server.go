// Package mcp exposes the food log to AI assistants over the Model
// Context Protocol. The same bearer credential as the REST API rides in
// on the Authorization header; tools never receive or return it.
package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/services"
)

const (
	serverName    = "foodlogr-mcp"
	serverVersion = "1.0.0"
)

// NewServer builds the MCP tool server over the food-log services.
func NewServer(logSvc *services.FoodLogService, reportSvc *services.ReportService) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	h := NewToolHandler(logSvc, reportSvc)
	if err := h.RegisterTools(s); err != nil {
		log.Fatal().Err(err).Msg("Failed to register food log tools")
	}
	return s
}

// NewHTTPHandler wraps the MCP server in a streamable HTTP transport
// mounted at /mcp. The context function resolves the bearer credential to
// an identity before any tool runs; requests without a valid credential
// still reach the tools, which then refuse to touch storage.
func NewHTTPHandler(s *server.MCPServer, authorizer auth.Authorizer) http.Handler {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			apiKey, err := auth.ExtractAPIKey(r)
			if err != nil {
				return ctx
			}
			userID, err := authorizer.Authorize(ctx, apiKey)
			if err != nil {
				return ctx
			}
			return auth.WithIdentity(ctx, userID)
		}),
	)
}
