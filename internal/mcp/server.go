package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/transcripta/capsearch/internal/search"
	"github.com/transcripta/capsearch/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "capsearch-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	store  storage.Store
	engine *search.Engine
}

// NewServer creates a new MCP server over the caption database at dbPath
func NewServer(dbPath string, searchConfig search.Config) (*Server, error) {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	engine, err := search.NewEngine(store, searchConfig)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize search engine: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		store:  store,
		engine: engine,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchCaptionsTool(), s.handleSearchCaptions)
	s.mcp.AddTool(getVideoTool(), s.handleGetVideo)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
	s.mcp.AddTool(clearCacheTool(), s.handleClearCache)
}
