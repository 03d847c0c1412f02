package storage

import (
	"context"
	"time"

	"github.com/julianstephens/murmur/internal/models"
)

// Provider is the Record Store. Implementations assign identities on insert
// and report unknown ids with errors.ErrNotFound.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Reminders
	AddReminder(ctx context.Context, r models.Reminder) (models.Reminder, error)
	GetReminder(ctx context.Context, id string) (models.Reminder, error)
	GetAllReminders(ctx context.Context) ([]models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	// DeleteReminders removes all ids in one transaction. Nothing is removed
	// if any id is unknown.
	DeleteReminders(ctx context.Context, ids []string) error

	// Voice notes
	AddVoiceNote(ctx context.Context, v models.VoiceNoteEntity) (models.VoiceNoteEntity, error)
	GetVoiceNote(ctx context.Context, id string) (models.VoiceNoteEntity, error)
	GetAllVoiceNotes(ctx context.Context) ([]models.VoiceNoteEntity, error)
	FindVoiceNotesByURL(ctx context.Context, audioURL string) ([]models.VoiceNoteEntity, error)
	DeleteVoiceNote(ctx context.Context, id string) error

	// Notification outbox
	AddNotification(ctx context.Context, n models.Notification) error
	GetDueNotifications(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	GetAllNotifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error
	// MarkNotificationFailed records a failed attempt. The row stays pending
	// until attempts reaches maxAttempts.
	MarkNotificationFailed(ctx context.Context, id string, reason string, maxAttempts int) error

	// Utils
	GetConfigPath() string
	SchemaStatus(ctx context.Context) (current int, pending int, err error)
}
