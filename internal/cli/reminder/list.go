package reminder

import (
	"fmt"
	"strings"

	"github.com/julianstephens/murmur/internal/cli"
)

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	all, err := ctx.Reminders.List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to list reminders: %w", err)
	}

	if len(all) == 0 {
		fmt.Println("No reminders.")
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%-5s %-36s %-30s %-16s", "#", "ID", "Title", "Date")))
	fmt.Println(strings.Repeat("-", 90))
	for i, r := range all {
		fmt.Printf("%-5d %-36s %-30s %-16s\n", i, r.ID, cli.Truncate(r.Title, 30), cli.FormatTime(r.Date))
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Reminder ID."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Reminders.Get(ctx.Ctx, c.ID)
	if err != nil {
		return fmt.Errorf("reminder not found: %w", err)
	}

	fmt.Println(cli.HeaderStyle.Render(r.Title))
	fmt.Printf("ID:       %s\n", r.ID)
	fmt.Printf("Date:     %s\n", cli.FormatTime(r.Date))
	fmt.Printf("Created:  %s\n", cli.FormatTime(r.CreatedAt))
	if r.Description != "" {
		fmt.Println()
		fmt.Println(r.Description)
	}
	return nil
}
