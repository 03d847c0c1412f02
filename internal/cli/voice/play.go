package voice

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/models"
	"github.com/julianstephens/murmur/internal/tui"
)

type PlayCmd struct {
	ID string `arg:"" help:"Voice note ID."`
}

func (c *PlayCmd) Run(ctx *cli.Context) error {
	notes, err := ctx.VoiceNotes.List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to list voice notes: %w", err)
	}

	var note models.VoiceNote
	for _, n := range notes {
		if n.ID == c.ID {
			note = n
			break
		}
	}
	if note.ID == "" {
		return fmt.Errorf("voice note not found: %s", c.ID)
	}

	if _, err := ctx.VoiceNotes.TogglePlayback(ctx.Ctx, note.ID); err != nil {
		return err
	}

	final, err := tea.NewProgram(tui.NewPlayModel(ctx.Ctx, ctx.VoiceNotes, note, ctx.Player.Done())).Run()
	if err != nil {
		return fmt.Errorf("playback session failed: %w", err)
	}
	if m, ok := final.(tui.PlayModel); ok {
		return m.Err()
	}
	return nil
}
