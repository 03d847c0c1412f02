package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/models"
	"github.com/julianstephens/murmur/internal/reminders"
	"github.com/julianstephens/murmur/internal/storage/sqlite"
)

type nopScheduler struct{}

func (nopScheduler) Schedule(models.Notification) {}

type fakeVoiceNotes struct {
	notes   []models.VoiceNote
	listErr error
	deleted []string
}

func (f *fakeVoiceNotes) List(context.Context) ([]models.VoiceNote, error) {
	return f.notes, f.listErr
}

func (f *fakeVoiceNotes) Delete(_ context.Context, id string) error {
	for i, n := range f.notes {
		if n.ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return fmt.Errorf("voice note %s: %w", id, errors.ErrNotFound)
}

func newServer(t *testing.T, voice *fakeVoiceNotes) *Server {
	t.Helper()
	store := sqlite.NewStore(constants.MemoryDSN)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })

	if voice == nil {
		voice = &fakeVoiceNotes{}
	}
	return New(reminders.New(store, nopScheduler{}), voice)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestReminderTools(t *testing.T) {
	ctx := context.Background()
	s := newServer(t, nil)

	res, err := s.handleListReminders(ctx, call(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "No reminders found.", text(t, res))

	res, err = s.handleAddReminder(ctx, call(map[string]any{
		"title":       "Pay rent",
		"description": "Transfer to landlord",
		"date":        "2025-03-01T09:00:00Z",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var added models.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &added))
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Pay rent", added.Title)
	assert.True(t, added.Date.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	res, err = s.handleGetReminder(ctx, call(map[string]any{"id": added.ID}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "Transfer to landlord")

	res, err = s.handleListReminders(ctx, call(nil))
	require.NoError(t, err)
	var listed []models.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &listed))
	assert.Len(t, listed, 1)

	res, err = s.handleDeleteReminder(ctx, call(map[string]any{"id": added.ID}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = s.handleGetReminder(ctx, call(map[string]any{"id": added.ID}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not_found")
}

func TestAddReminderValidation(t *testing.T) {
	ctx := context.Background()
	s := newServer(t, nil)

	tests := map[string]map[string]any{
		"missing date":  {"title": "x"},
		"bad date":      {"title": "x", "date": "tomorrow"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := s.handleAddReminder(ctx, call(args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestAddReminderEmptyTitle(t *testing.T) {
	ctx := context.Background()
	s := newServer(t, nil)

	res, err := s.handleAddReminder(ctx, call(map[string]any{"date": "2025-03-01T09:00:00Z"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var added models.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &added))
	assert.NotEmpty(t, added.ID)
	assert.Empty(t, added.Title)

	res, err = s.handleAddReminder(ctx, call(map[string]any{"title": "", "date": "2025-03-02T09:00:00Z"}))
	require.NoError(t, err)
	assert.False(t, res.IsError, text(t, res))

	res, err = s.handleListReminders(ctx, call(nil))
	require.NoError(t, err)
	var listed []models.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &listed))
	assert.Len(t, listed, 2)
}

func TestDeleteReminderUnknown(t *testing.T) {
	s := newServer(t, nil)
	res, err := s.handleDeleteReminder(context.Background(), call(map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleDeleteReminder(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestVoiceNoteTools(t *testing.T) {
	ctx := context.Background()
	voice := &fakeVoiceNotes{notes: []models.VoiceNote{
		{ID: "a", AudioURL: "file:///tmp/a.m4a", Path: "/tmp/a.m4a"},
		{ID: "b", AudioURL: "file:///tmp/b.m4a", Path: "/tmp/b.m4a"},
	}}
	s := newServer(t, voice)

	res, err := s.handleListVoiceNotes(ctx, call(nil))
	require.NoError(t, err)
	var notes []models.VoiceNote
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &notes))
	assert.Len(t, notes, 2)

	res, err = s.handleDeleteVoiceNote(ctx, call(map[string]any{"id": "a"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"a"}, voice.deleted)

	res, err = s.handleDeleteVoiceNote(ctx, call(map[string]any{"id": "a"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListVoiceNotesFetchFailure(t *testing.T) {
	voice := &fakeVoiceNotes{listErr: errors.Wrap(errors.ErrStoreFetch, fmt.Errorf("disk I/O error"))}
	s := newServer(t, voice)

	res, err := s.handleListVoiceNotes(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "store_fetch")
}

func TestToolsRegistered(t *testing.T) {
	s := newServer(t, nil)
	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp := s.MCPServer().HandleMessage(context.Background(), msg)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"add_reminder", "list_reminders", "get_reminder", "delete_reminder", "list_voice_notes", "delete_voice_note"} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}
