package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

// Server exposes one user's journal over MCP.
type Server struct {
	mcpServer *mcp.Server
	db        *store.DB
	user      *models.User
	loc       *time.Location
	now       func() time.Time
}

// NewServer creates an MCP server acting as user.
func NewServer(db *store.DB, user *models.User, version string) *Server {
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    "lifelog",
			Version: version,
		}, nil),
		db:   db,
		user: user,
		loc:  time.Local,
		now:  time.Now,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Serve runs the server over stdio until ctx is done or the client hangs up.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
