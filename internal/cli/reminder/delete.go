package reminder

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/murmur/internal/cli"
)

type DeleteCmd struct {
	IDs   []string `arg:"" optional:"" name:"id" help:"Reminder IDs to delete."`
	Index []int    `help:"Positions from 'reminder list' to delete." short:"i"`
	Yes   bool     `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Validate() error {
	if len(c.IDs) == 0 && len(c.Index) == 0 {
		return fmt.Errorf("specify reminder IDs or --index")
	}
	if len(c.IDs) > 0 && len(c.Index) > 0 {
		return fmt.Errorf("cannot combine reminder IDs with --index")
	}
	return nil
}

func confirm(title string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		n := len(c.IDs) + len(c.Index)
		ok, err := confirm(fmt.Sprintf("Delete %d reminder(s)?", n))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if len(c.Index) > 0 {
		// Positions refer to the list order, so load it first
		if _, err := ctx.Reminders.List(ctx.Ctx); err != nil {
			return fmt.Errorf("failed to list reminders: %w", err)
		}
		deleted, err := ctx.Reminders.DeleteAt(ctx.Ctx, c.Index...)
		if err != nil {
			return fmt.Errorf("failed to delete reminders: %w", err)
		}
		if skipped := len(c.Index) - deleted; skipped > 0 {
			cli.Warn("%d position(s) out of range or repeated", skipped)
		}
		cli.Success("Deleted %d reminder(s)", deleted)
		return nil
	}

	for _, id := range c.IDs {
		if err := ctx.Reminders.Delete(ctx.Ctx, id); err != nil {
			return fmt.Errorf("failed to delete reminder %s: %w", id, err)
		}
		cli.Success("Reminder deleted: %s", id)
	}
	return nil
}
