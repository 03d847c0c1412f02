package voice

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/tui"
)

type RecordCmd struct{}

func (c *RecordCmd) Run(ctx *cli.Context) error {
	path, err := ctx.VoiceNotes.StartRecording(ctx.Ctx)
	if err != nil {
		// The recorder's own message is what the user needs to see
		return err
	}

	final, err := tea.NewProgram(tui.NewRecordModel(ctx.Ctx, ctx.VoiceNotes, path)).Run()
	if err != nil {
		// Leave the device free even when the terminal failed
		if _, stopErr := ctx.VoiceNotes.StopRecording(ctx.Ctx); stopErr != nil {
			return fmt.Errorf("recording session failed: %w (stop: %v)", err, stopErr)
		}
		return fmt.Errorf("recording session failed: %w", err)
	}

	m, ok := final.(tui.RecordModel)
	if !ok {
		return fmt.Errorf("unexpected session model %T", final)
	}
	note, err := m.Result()
	if err != nil {
		return err
	}
	cli.Success("Voice note saved: %s", note.Path)
	return nil
}
