package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/chronobox/internal/calendar"
	"github.com/hpungsan/chronobox/internal/config"
	"github.com/hpungsan/chronobox/internal/errors"
	"github.com/hpungsan/chronobox/internal/ops"
	"github.com/hpungsan/chronobox/internal/session"
	"github.com/hpungsan/chronobox/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store   *store.Store
	session *session.Session
	gateway *calendar.Gateway
	cfg     *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, sess *session.Session, gw *calendar.Gateway, cfg *config.Config) *Handlers {
	return &Handlers{store: st, session: sess, gateway: gw, cfg: cfg}
}

// Request types for each tool

// CreateRequest represents the arguments for capsule_create.
type CreateRequest struct {
	Message      string `json:"message,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	UnlockDate   string `json:"unlock_date"`
	SkipReminder bool   `json:"skip_reminder,omitempty"`
}

// GetRequest represents the arguments for capsule_get.
type GetRequest struct {
	ID string `json:"id"`
}

// UpdateRequest represents the arguments for capsule_update.
type UpdateRequest struct {
	ID         string  `json:"id"`
	Message    *string `json:"message,omitempty"`
	ImageURL   *string `json:"image_url,omitempty"`
	UnlockDate *string `json:"unlock_date,omitempty"`
}

// DeleteRequest represents the arguments for capsule_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// CheckReminderRequest represents the arguments for capsule_check_reminder.
type CheckReminderRequest struct {
	ID string `json:"id"`
}

// Handler implementations

// HandleCreate handles the capsule_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	unlockDate, err := parseInstant(input.UnlockDate)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Create(ctx, h.store, h.gateway, ops.CreateInput{
		Message:      input.Message,
		ImageURL:     input.ImageURL,
		UnlockDate:   unlockDate,
		SkipReminder: input.SkipReminder,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the capsule_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.List(h.store)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the capsule_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Get(h.store, ops.GetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleUpdate handles the capsule_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	opsInput := ops.UpdateInput{
		ID:       input.ID,
		Message:  input.Message,
		ImageURL: input.ImageURL,
	}
	if input.UnlockDate != nil {
		unlockDate, err := parseInstant(*input.UnlockDate)
		if err != nil {
			return errorResult(err), nil
		}
		opsInput.UnlockDate = &unlockDate
	}

	result, err := ops.Update(h.store, opsInput)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the capsule_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Delete(h.store, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCheckReminder handles the capsule_check_reminder tool call.
func (h *Handlers) HandleCheckReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckReminderRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.CheckReminder(ctx, h.store, h.gateway, ops.CheckReminderInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAuthStatus handles the auth_status tool call.
func (h *Handlers) HandleAuthStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Status(h.session))
}

// parseInstant parses an RFC 3339 instant from a tool argument.
func parseInstant(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.NewValidation("unlock_date must be an RFC 3339 instant")
	}
	return t, nil
}

// errorResult creates an MCP error result with a structured error payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if cErr, ok := err.(*errors.ChronoError); ok {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if cErr.Code != errors.ErrInternal && cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
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
