package system

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/notifier"
)

// NotifyCmd delivers due notifications. Run it from cron, or with --watch as
// a long-running process.
type NotifyCmd struct {
	DryRun   bool          `help:"Print due notifications to stdout instead of sending them. Nothing is marked delivered."`
	Watch    bool          `help:"Keep delivering until interrupted."`
	Interval time.Duration `help:"Polling interval for --watch (defaults to notifications.poll_interval)."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config.Notifications

	if !cfg.Enabled {
		if c.DryRun {
			fmt.Println("Notifications are disabled in config.")
		}
		return nil
	}

	if c.DryRun {
		due, err := ctx.Store.GetDueNotifications(ctx.Ctx, time.Now(), constants.NotifyBatchSize)
		if err != nil {
			return fmt.Errorf("failed to load due notifications: %w", err)
		}
		if len(due) == 0 {
			fmt.Println("No notifications due.")
			return nil
		}
		printer := notifier.NewPrintSender(os.Stdout)
		for _, n := range due {
			fmt.Print("[DryRun] ")
			if err := printer.Send(ctx.Ctx, n); err != nil {
				return err
			}
		}
		return nil
	}

	sender := notifier.NewTraySender(
		notifier.WithTrayIdentifier(cfg.TrayIdentifier),
		notifier.WithDuration(cfg.DurationMs),
		notifier.WithRetry(cfg.MaxRetries, cfg.RetryDelay),
	)
	dispatcher := notifier.NewDispatcher(ctx.Store, sender, notifier.WithMaxRetries(cfg.MaxRetries))

	if c.Watch {
		interval := c.Interval
		if interval <= 0 {
			interval = cfg.PollInterval
		}
		runCtx, stop := signal.NotifyContext(ctx.Ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return dispatcher.Run(runCtx, interval)
	}

	res, err := dispatcher.DeliverDue(ctx.Ctx, time.Now())
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		fmt.Printf("Delivered %d notification(s), %d failed\n", res.Delivered, res.Failed)
	}
	return nil
}
