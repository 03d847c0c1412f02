package sqlite

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(constants.MemoryDSN)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitAndLoadFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "murmur.db")

	store := NewStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := store.AddReminder(ctx, models.Reminder{Title: "kept", Date: time.Now()}); err != nil {
		t.Fatalf("AddReminder failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	reminders, err := reopened.GetAllReminders(ctx)
	if err != nil {
		t.Fatalf("GetAllReminders failed: %v", err)
	}
	if len(reminders) != 1 || reminders[0].Title != "kept" {
		t.Errorf("expected persisted reminder, got %+v", reminders)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath = %q, want %q", reopened.GetConfigPath(), path)
	}
}

func TestPragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "murmur.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	// Hold several connections at once so the pool opens new ones
	for i := 0; i < 3; i++ {
		conn, err := store.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn failed: %v", err)
		}
		defer conn.Close()

		var timeout, fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("busy_timeout query failed: %v", err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("foreign_keys query failed: %v", err)
		}
		if timeout != 5000 || fk != 1 {
			t.Errorf("connection %d: busy_timeout=%d foreign_keys=%d", i, timeout, fk)
		}
	}
}

func TestLoadMissingDatabase(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.db"))
	if err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error loading missing database")
	}
}

func TestLoadInMemoryInitializes(t *testing.T) {
	store := NewStore(constants.MemoryDSN)
	defer store.Close()
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := store.GetAllReminders(context.Background()); err != nil {
		t.Fatalf("store not usable after Load: %v", err)
	}
}

func TestSchemaStatus(t *testing.T) {
	store := setupStore(t)
	current, pending, err := store.SchemaStatus(context.Background())
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if current < 2 {
		t.Errorf("expected schema version >= 2, got %d", current)
	}
	if pending != 0 {
		t.Errorf("expected no pending migrations, got %d", pending)
	}
}

func TestReminderCRUD(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	date := time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local)
	saved, err := store.AddReminder(ctx, models.Reminder{Title: "Pay rent", Description: "Transfer to landlord", Date: date})
	if err != nil {
		t.Fatalf("AddReminder failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := store.GetReminder(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if got.Title != "Pay rent" || got.Description != "Transfer to landlord" {
		t.Errorf("unexpected reminder: %+v", got)
	}
	if !got.Date.Equal(date) {
		t.Errorf("date = %v, want %v", got.Date, date)
	}

	if err := store.DeleteReminder(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteReminder failed: %v", err)
	}
	if _, err := store.GetReminder(ctx, saved.ID); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteReminder(ctx, saved.ID); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestReminderEmptyContentAllowed(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	saved, err := store.AddReminder(ctx, models.Reminder{Date: time.Now().Add(-48 * time.Hour)})
	if err != nil {
		t.Fatalf("AddReminder with empty content failed: %v", err)
	}
	got, err := store.GetReminder(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if got.Title != "" || got.Description != "" {
		t.Errorf("expected empty title and description, got %+v", got)
	}
}

func TestReminderZeroDateRejected(t *testing.T) {
	store := setupStore(t)
	_, err := store.AddReminder(context.Background(), models.Reminder{Title: "no date"})
	if !stderrors.Is(err, errors.ErrStoreWrite) {
		t.Errorf("expected ErrStoreWrite, got %v", err)
	}
}

func TestGetAllRemindersOrdered(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	base := time.Now()
	for i, title := range []string{"first", "second", "third"} {
		_, err := store.AddReminder(ctx, models.Reminder{
			Title:     title,
			Date:      base,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AddReminder failed: %v", err)
		}
	}

	reminders, err := store.GetAllReminders(ctx)
	if err != nil {
		t.Fatalf("GetAllReminders failed: %v", err)
	}
	if len(reminders) != 3 {
		t.Fatalf("expected 3 reminders, got %d", len(reminders))
	}
	for i, want := range []string{"first", "second", "third"} {
		if reminders[i].Title != want {
			t.Errorf("reminders[%d] = %q, want %q", i, reminders[i].Title, want)
		}
	}
}

func TestDeleteRemindersAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	a, _ := store.AddReminder(ctx, models.Reminder{Title: "a", Date: time.Now()})
	b, _ := store.AddReminder(ctx, models.Reminder{Title: "b", Date: time.Now()})

	err := store.DeleteReminders(ctx, []string{a.ID, "missing"})
	if !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	reminders, _ := store.GetAllReminders(ctx)
	if len(reminders) != 2 {
		t.Errorf("expected rollback to keep 2 reminders, got %d", len(reminders))
	}

	if err := store.DeleteReminders(ctx, []string{a.ID, b.ID}); err != nil {
		t.Fatalf("DeleteReminders failed: %v", err)
	}
	reminders, _ = store.GetAllReminders(ctx)
	if len(reminders) != 0 {
		t.Errorf("expected no reminders, got %d", len(reminders))
	}

	if err := store.DeleteReminders(ctx, nil); err != nil {
		t.Errorf("empty delete should be a no-op, got %v", err)
	}
}

func TestVoiceNoteCRUD(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	url := "file:///tmp/voicenotes/one.m4a"
	saved, err := store.AddVoiceNote(ctx, models.VoiceNoteEntity{AudioURL: url})
	if err != nil {
		t.Fatalf("AddVoiceNote failed: %v", err)
	}

	got, err := store.GetVoiceNote(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetVoiceNote failed: %v", err)
	}
	if got.AudioURL != url {
		t.Errorf("audio url = %q, want %q", got.AudioURL, url)
	}

	// Duplicate URLs are allowed
	if _, err := store.AddVoiceNote(ctx, models.VoiceNoteEntity{AudioURL: url}); err != nil {
		t.Fatalf("AddVoiceNote duplicate failed: %v", err)
	}
	matches, err := store.FindVoiceNotesByURL(ctx, url)
	if err != nil {
		t.Fatalf("FindVoiceNotesByURL failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(matches))
	}

	if err := store.DeleteVoiceNote(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteVoiceNote failed: %v", err)
	}
	all, _ := store.GetAllVoiceNotes(ctx)
	if len(all) != 1 {
		t.Errorf("expected 1 voice note after delete, got %d", len(all))
	}
	if err := store.DeleteVoiceNote(ctx, saved.ID); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVoiceNoteEmptyURLRejected(t *testing.T) {
	store := setupStore(t)
	_, err := store.AddVoiceNote(context.Background(), models.VoiceNoteEntity{})
	if !stderrors.Is(err, errors.ErrStoreWrite) {
		t.Errorf("expected ErrStoreWrite, got %v", err)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	now := time.Now()
	past := models.Notification{ID: "past", Title: "due", FireAt: now.Add(-time.Minute)}
	future := models.Notification{ID: "future", Title: "later", FireAt: now.Add(time.Hour)}
	for _, n := range []models.Notification{past, future} {
		if err := store.AddNotification(ctx, n); err != nil {
			t.Fatalf("AddNotification failed: %v", err)
		}
	}

	due, err := store.GetDueNotifications(ctx, now, 10)
	if err != nil {
		t.Fatalf("GetDueNotifications failed: %v", err)
	}
	if len(due) != 1 || due[0].ID != "past" {
		t.Fatalf("expected only past notification due, got %+v", due)
	}
	if due[0].Status != models.NotificationPending || due[0].Sound != models.SoundDefault {
		t.Errorf("unexpected defaults: %+v", due[0])
	}

	deliveredAt := now.Add(time.Second)
	if err := store.MarkNotificationDelivered(ctx, "past", deliveredAt); err != nil {
		t.Fatalf("MarkNotificationDelivered failed: %v", err)
	}
	due, _ = store.GetDueNotifications(ctx, now, 10)
	if len(due) != 0 {
		t.Errorf("expected nothing due after delivery, got %d", len(due))
	}

	all, err := store.GetAllNotifications(ctx)
	if err != nil {
		t.Fatalf("GetAllNotifications failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(all))
	}
	if all[0].Status != models.NotificationDelivered || all[0].DeliveredAt == nil {
		t.Errorf("expected delivered notification, got %+v", all[0])
	}
	if all[0].Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", all[0].Attempts)
	}
}

func TestNotificationDuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	n := models.Notification{ID: "same", FireAt: time.Now()}
	if err := store.AddNotification(ctx, n); err != nil {
		t.Fatalf("AddNotification failed: %v", err)
	}
	if err := store.AddNotification(ctx, n); !stderrors.Is(err, errors.ErrStoreWrite) {
		t.Errorf("expected ErrStoreWrite for duplicate id, got %v", err)
	}
}

func TestMarkNotificationFailed(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	now := time.Now()
	if err := store.AddNotification(ctx, models.Notification{ID: "flaky", FireAt: now.Add(-time.Second)}); err != nil {
		t.Fatalf("AddNotification failed: %v", err)
	}

	if err := store.MarkNotificationFailed(ctx, "flaky", "tray offline", 2); err != nil {
		t.Fatalf("MarkNotificationFailed failed: %v", err)
	}
	due, _ := store.GetDueNotifications(ctx, now, 10)
	if len(due) != 1 || due[0].Attempts != 1 || due[0].LastError != "tray offline" {
		t.Fatalf("expected pending retry, got %+v", due)
	}

	if err := store.MarkNotificationFailed(ctx, "flaky", "tray offline", 2); err != nil {
		t.Fatalf("MarkNotificationFailed failed: %v", err)
	}
	due, _ = store.GetDueNotifications(ctx, now, 10)
	if len(due) != 0 {
		t.Errorf("expected notification to be failed, got %+v", due)
	}

	if err := store.MarkNotificationFailed(ctx, "missing", "x", 2); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDueNotificationsLimit(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.AddNotification(ctx, models.Notification{ID: id, FireAt: now.Add(-time.Hour)}); err != nil {
			t.Fatalf("AddNotification failed: %v", err)
		}
	}
	due, err := store.GetDueNotifications(ctx, now, 2)
	if err != nil {
		t.Fatalf("GetDueNotifications failed: %v", err)
	}
	if len(due) != 2 {
		t.Errorf("expected limit of 2, got %d", len(due))
	}
}
