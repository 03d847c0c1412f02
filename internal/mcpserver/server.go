package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/models"
)

// Reminders is the slice of the Reminder Manager exposed as tools.
type Reminders interface {
	Add(ctx context.Context, title, description string, date time.Time) (models.Reminder, error)
	List(ctx context.Context) ([]models.Reminder, error)
	Get(ctx context.Context, id string) (models.Reminder, error)
	Delete(ctx context.Context, id string) error
}

// VoiceNotes is the slice of the Voice Note Manager exposed as tools.
type VoiceNotes interface {
	List(ctx context.Context) ([]models.VoiceNote, error)
	Delete(ctx context.Context, id string) error
}

// Server is the MCP tool server over the reminder and voice note managers.
type Server struct {
	mcpServer  *server.MCPServer
	reminders  Reminders
	voiceNotes VoiceNotes
}

func New(reminders Reminders, voiceNotes VoiceNotes) *Server {
	s := &Server{
		reminders:  reminders,
		voiceNotes: voiceNotes,
	}

	s.mcpServer = server.NewMCPServer(
		constants.AppName,
		constants.Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving tools over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a reminder. A notification fires one lead time before its date."),
			mcp.WithString("title", mcp.Description("Reminder title, may be empty")),
			mcp.WithString("date", mcp.Required(), mcp.Description("Date in RFC3339 format (e.g. 2025-01-15T09:00:00Z)")),
			mcp.WithString("description", mcp.Description("Optional description, used as the notification body")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all reminders"),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_reminder",
			mcp.WithDescription("Show one reminder"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleGetReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_voice_notes",
			mcp.WithDescription("List recorded voice notes with their local file paths"),
		),
		s.handleListVoiceNotes,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_voice_note",
			mcp.WithDescription("Delete a voice note"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Voice note ID")),
		),
		s.handleDeleteVoiceNote,
	)
}

// toolError renders err with its failure class so clients can tell a missing
// record from a broken store.
func toolError(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s (%s): %v", action, errors.Kind(err), err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	dateStr := req.GetString("date", "")
	description := req.GetString("description", "")

	if dateStr == "" {
		return mcp.NewToolResultError("date is required"), nil
	}

	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date format: %v (use RFC3339, e.g. 2025-01-15T09:00:00Z)", err)), nil
	}

	added, err := s.reminders.Add(ctx, title, description, date.Local())
	if err != nil {
		return toolError("add reminder", err), nil
	}
	return jsonResult(added)
}

func (s *Server) handleListReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.reminders.List(ctx)
	if err != nil {
		return toolError("list reminders", err), nil
	}
	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(reminders)
}

func (s *Server) handleGetReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	r, err := s.reminders.Get(ctx, id)
	if err != nil {
		return toolError("get reminder", err), nil
	}
	return jsonResult(r)
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.reminders.Delete(ctx, id); err != nil {
		return toolError("delete reminder", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleListVoiceNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.voiceNotes.List(ctx)
	if err != nil {
		return toolError("list voice notes", err), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("No voice notes found."), nil
	}
	return jsonResult(notes)
}

func (s *Server) handleDeleteVoiceNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.voiceNotes.Delete(ctx, id); err != nil {
		return toolError("delete voice note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Voice note %s deleted.", id)), nil
}
