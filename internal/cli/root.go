package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/murmur/internal/audio"
	"github.com/julianstephens/murmur/internal/config"
	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/models"
	"github.com/julianstephens/murmur/internal/notifier"
	"github.com/julianstephens/murmur/internal/reminders"
	"github.com/julianstephens/murmur/internal/storage"
	"github.com/julianstephens/murmur/internal/voicenotes"
)

// Context is handed to every command's Run. Store and the managers are nil
// until Open succeeds.
type Context struct {
	Ctx    context.Context
	Config *config.Config

	Store      storage.Provider
	Outbox     *notifier.Outbox
	Player     audio.Player
	Reminders  *reminders.Manager
	VoiceNotes *voicenotes.Manager
}

// Open opens the record store at the configured path and wires the managers
// to it. With create set the database and schema are created as needed.
func (c *Context) Open(create bool) error {
	store, err := storage.Open(c.Ctx, c.Config.Storage.Path, create)
	if err != nil {
		return err
	}

	cfg := c.Config
	c.Store = store
	c.Outbox = notifier.NewOutbox(store, notifier.WithEnabled(cfg.Notifications.Enabled))
	c.Player = audio.NewFFplayPlayer(cfg.Audio.FFplayPath)
	c.Reminders = reminders.New(store, c.Outbox,
		reminders.WithLeadTime(cfg.Notifications.LeadTime),
	)
	c.VoiceNotes = voicenotes.New(store, c.Outbox,
		audio.NewFFmpegRecorder(cfg.Audio.FFmpegPath, cfg.Audio.InputFormat, cfg.Audio.InputDevice),
		c.Player,
		voicenotes.WithDir(cfg.Audio.Dir),
		voicenotes.WithSavedDelay(cfg.Notifications.SavedDelay),
		voicenotes.WithRemoveFiles(cfg.Audio.RemoveOnDelete),
	)
	c.VoiceNotes.Subscribe(func(n models.VoiceNote) {
		logger.Info("New voice note added", "id", n.ID, "url", n.AudioURL)
	})
	return nil
}

// Close drains queued notifications into the store, stops playback and
// closes the store. It is safe to call when Open never ran.
func (c *Context) Close() {
	if c.Outbox != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Outbox.Close(ctx); err != nil {
			logger.Warn("Notification queue not fully drained", "error", err)
		}
	}
	if c.Player != nil {
		_ = c.Player.Pause()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}
}

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	FailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func Success(format string, args ...any) {
	fmt.Println(SuccessStyle.Render("✓ ") + fmt.Sprintf(format, args...))
}

func Warn(format string, args ...any) {
	fmt.Println(WarnStyle.Render("⚠ ") + fmt.Sprintf(format, args...))
}

// FormatTime renders t in the local display format.
func FormatTime(t time.Time) string {
	return t.Local().Format(constants.DateTimeFormat)
}

// Truncate shortens s to n runes with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
