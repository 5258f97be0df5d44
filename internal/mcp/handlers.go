package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jtammen/stride/internal/activity"
	"github.com/jtammen/stride/internal/errors"
	"github.com/jtammen/stride/internal/state"
	syncer "github.com/jtammen/stride/internal/sync"
	"github.com/jtammen/stride/internal/vault"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	store  *vault.Store
	runner *syncer.Runner
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, store *vault.Store, runner *syncer.Runner) *Handlers {
	return &Handlers{db: db, store: store, runner: runner}
}

// RecentRequest represents the arguments for workout_recent.
type RecentRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ClassifyRequest represents the arguments for workout_classify.
type ClassifyRequest struct {
	TypeLabel string `json:"type_label"`
}

// HandleSync handles the workout_sync tool call.
func (h *Handlers) HandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.runner.Run(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(report)
}

// HandleRetry handles the workout_retry tool call.
func (h *Handlers) HandleRetry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.runner.Retry(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(report)
}

// HandleStatus handles the workout_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := map[string]any{}

	cursor, ok, err := state.Cursor(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	if ok {
		payload["last_synced_at"] = cursor.Format(time.RFC3339)
	} else {
		payload["last_synced_at"] = nil
	}

	if run, ok, err := state.LatestRun(h.db); err != nil {
		return errorResult(err), nil
	} else if ok {
		payload["latest_run"] = map[string]any{
			"id":          run.ID,
			"finished_at": time.Unix(run.FinishedAt, 0).Format(time.RFC3339),
			"fetched":     run.Fetched,
			"created":     run.Created,
			"duplicates":  run.Duplicates,
			"failed":      run.Failed,
		}
	}

	ix, err := h.store.Scan()
	if err != nil {
		return errorResult(err), nil
	}
	payload["synced_notes"] = ix.Len()

	if skipped, err := state.ListUnresolvedSkipped(h.db); err == nil {
		payload["unresolved_skipped"] = len(skipped)
	}

	return successResult(payload)
}

// HandleUnknowns handles the workout_unknowns tool call.
func (h *Handlers) HandleUnknowns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skipped, err := state.ListUnresolvedSkipped(h.db)
	if err != nil {
		return errorResult(err), nil
	}

	items := make([]map[string]any, 0, len(skipped))
	for _, s := range skipped {
		items = append(items, map[string]any{
			"remote_id":  s.RemoteID,
			"type_label": s.TypeLabel,
			"started_at": s.StartedAt.Format(time.RFC3339),
			"code":       s.Code,
			"message":    s.Message,
		})
	}
	return successResult(map[string]any{"skipped": items})
}

// HandleRecent handles the workout_recent tool call.
func (h *Handlers) HandleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	headers, err := h.store.ListHeaders()
	if err != nil {
		return errorResult(err), nil
	}
	if len(headers) > limit {
		headers = headers[:limit]
	}
	return successResult(map[string]any{"workouts": headers})
}

// HandleClassify handles the workout_classify tool call.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClassifyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.TypeLabel == "" {
		return errorResult(errors.NewInvalidRequest("type_label is required")), nil
	}

	c, err := activity.Classify(input.TypeLabel)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"type_label": input.TypeLabel,
		"category":   c.Category,
		"exercise":   c.Exercise,
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := err.(*errors.StrideError); ok {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
