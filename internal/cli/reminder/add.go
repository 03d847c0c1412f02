package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/constants"
)

type AddCmd struct {
	Title       string `arg:"" optional:"" help:"Reminder title."`
	Description string `help:"Notification body." short:"d"`
	Date        string `help:"When the reminder is due (YYYY-MM-DD HH:MM, local time)."`
}

// ParseDate reads a local date and time in the display format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateTimeFormat, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD HH:MM)", s)
	}
	return t, nil
}

func (c *AddCmd) Validate() error {
	if c.Date == "" {
		return nil
	}
	_, err := ParseDate(c.Date)
	return err
}

func (c *AddCmd) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&c.Title),
			huh.NewText().
				Title("Description").
				Value(&c.Description),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD HH:MM").
				Placeholder(time.Now().Add(24*time.Hour).Format(constants.DateTimeFormat)).
				Value(&c.Date).
				Validate(func(s string) error {
					_, err := ParseDate(s)
					return err
				}),
		),
	)
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	// The title may be empty; only a missing date needs the form
	if c.Date == "" {
		if err := c.form().Run(); err != nil {
			return err
		}
	}

	date, err := ParseDate(c.Date)
	if err != nil {
		return err
	}

	r, err := ctx.Reminders.Add(ctx.Ctx, c.Title, c.Description, date)
	if err != nil {
		return fmt.Errorf("failed to add reminder: %w", err)
	}

	title := r.Title
	if title == "" {
		title = "(untitled)"
	}
	cli.Success("Reminder added: %s on %s", title, cli.FormatTime(r.Date))
	notifyAt := r.NotifyAt(ctx.Config.Notifications.LeadTime)
	if ctx.Config.Notifications.Enabled {
		fmt.Println(cli.MutedStyle.Render("  notification at " + cli.FormatTime(notifyAt)))
	}
	return nil
}
