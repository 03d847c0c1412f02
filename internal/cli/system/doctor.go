package system

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/keyring"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/notifier"
	"github.com/julianstephens/murmur/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warn marks checks whose failure does not fail the command
	warn bool
	run  func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) checks() []check {
	return []check{
		{name: "Configuration", run: func(ctx *cli.Context) error { return ctx.Config.Validate() }},
		{name: "Database reachable", run: checkDB},
		{name: "Schema version", run: checkSchema},
		{name: "ffmpeg available", run: func(ctx *cli.Context) error { return lookPath(ctx.Config.Audio.FFmpegPath) }},
		{name: "ffplay available", run: func(ctx *cli.Context) error { return lookPath(ctx.Config.Audio.FFplayPath) }},
		{name: "Clock/timezone", run: checkClock},
		{name: "Tray application", warn: true, run: func(ctx *cli.Context) error {
			return notifier.TrayStatus(ctx.Config.Notifications.TrayIdentifier)
		}},
		{name: "OS keyring", warn: true, run: checkKeyring},
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	failed := 0
	dbReachable := true
	for _, c := range cmd.checks() {
		if c.name == "Schema version" && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("%s %s: OK\n", cli.SuccessStyle.Render("✓"), c.name)
		case c.warn:
			fmt.Printf("%s %s: WARNING\n", cli.WarnStyle.Render("⚠"), c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("%s %s: FAIL\n", cli.FailStyle.Render("❌"), c.name)
			fmt.Printf("   Error: %v\n", err)
			failed++
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	fmt.Println()
	if path := logger.Path(); path != "" {
		fmt.Println(cli.MutedStyle.Render("Logs: " + path))
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkDB(ctx *cli.Context) error {
	if ctx.Store != nil {
		return nil
	}
	return ctx.Open(false)
}

func checkSchema(ctx *cli.Context) error {
	current, pending, err := ctx.Store.SchemaStatus(ctx.Ctx)
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("schema version %d with %d pending migration(s); run 'murmur init'", current, pending)
	}
	return nil
}

func lookPath(bin string) error {
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", bin, err)
	}
	return nil
}

func checkClock(_ *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if _, err := time.LoadLocation(now.Location().String()); err != nil {
		return fmt.Errorf("local timezone %q cannot be loaded: %w", now.Location(), err)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !storage.IsPostgres(ctx.Config.Storage.Path) {
		return nil
	}
	user := storage.ConnUser(ctx.Config.Storage.Path)
	state, err := keyring.Check(user)
	if err != nil {
		return err
	}
	if state == keyring.Missing && os.Getenv("PGPASSWORD") == "" {
		return fmt.Errorf("no password stored for %s; run 'murmur keyring set'", keyring.User(user))
	}
	return nil
}
