// Package mcp exposes the sync engine to MCP clients over stdio, so an
// assistant with vault access can trigger syncs and inspect their outcome.
package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	syncer "github.com/jtammen/stride/internal/sync"
	"github.com/jtammen/stride/internal/vault"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"workout_sync": {
		def:     syncToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSync },
	},
	"workout_retry": {
		def:     retryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRetry },
	},
	"workout_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"workout_unknowns": {
		def:     unknownsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUnknowns },
	},
	"workout_recent": {
		def:     recentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecent },
	},
	"workout_classify": {
		def:     classifyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClassify },
	},
}

var syncToolDef = mcp.NewTool("workout_sync",
	mcp.WithDescription("Fetch new activities from the remote source and write them to the vault as workout notes. Returns a run report."),
)

var retryToolDef = mcp.NewTool("workout_retry",
	mcp.WithDescription("Re-attempt every previously skipped activity, typically after the activity taxonomy has been extended."),
)

var statusToolDef = mcp.NewTool("workout_status",
	mcp.WithDescription("Report the sync cursor, the latest run summary, and the number of synced notes in the vault."),
)

var unknownsToolDef = mcp.NewTool("workout_unknowns",
	mcp.WithDescription("List activities skipped by previous runs and not yet synced, with the reason for each."),
)

var recentToolDef = mcp.NewTool("workout_recent",
	mcp.WithDescription("List the most recent synced workout notes."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of notes to return (default 10)."),
	),
)

var classifyToolDef = mcp.NewTool("workout_classify",
	mcp.WithDescription("Classify a raw activity type label into its category and exercise without syncing anything."),
	mcp.WithString("type_label",
		mcp.Required(),
		mcp.Description("The raw activity type label, e.g. \"trail_running\"."),
	),
)

// AllToolNames returns a list of all registered tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with stride tools registered.
func NewServer(db *sql.DB, store *vault.Store, runner *syncer.Runner, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"stride",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, store, runner)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, store *vault.Store, runner *syncer.Runner, version string) error {
	s := NewServer(db, store, runner, version)
	return server.ServeStdio(s)
}
