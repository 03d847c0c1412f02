package voice

import (
	"fmt"

	"github.com/julianstephens/murmur/internal/cli"
)

type DeleteCmd struct {
	ID  string `arg:"" optional:"" help:"Voice note ID."`
	URL string `help:"Delete the voice note stored with this file:// URL instead."`
}

func (c *DeleteCmd) Validate() error {
	if (c.ID == "") == (c.URL == "") {
		return fmt.Errorf("specify either a voice note ID or --url")
	}
	return nil
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if c.URL != "" {
		if err := ctx.VoiceNotes.DeleteByURL(ctx.Ctx, c.URL); err != nil {
			return fmt.Errorf("failed to delete voice note: %w", err)
		}
		cli.Success("Voice note deleted: %s", c.URL)
		return nil
	}

	if err := ctx.VoiceNotes.Delete(ctx.Ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete voice note: %w", err)
	}
	cli.Success("Voice note deleted: %s", c.ID)
	return nil
}
