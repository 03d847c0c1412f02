package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/cli/backups"
	"github.com/julianstephens/murmur/internal/cli/reminder"
	"github.com/julianstephens/murmur/internal/cli/system"
	"github.com/julianstephens/murmur/internal/cli/voice"
	"github.com/julianstephens/murmur/internal/config"
	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_file}"`
	DB      string `name:"db" help:"SQLite file, :memory: or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded; use PGPASSWORD, .pgpass or 'murmur keyring set'."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize murmur storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Notify system.NotifyCmd `cmd:"" help:"Deliver due notifications."`
	Mcp    system.McpCmd    `cmd:"" name:"mcp" help:"Serve reminder and voice note tools over MCP (stdio)."`

	Reminder struct {
		Add    reminder.AddCmd    `cmd:"" help:"Add a reminder."`
		List   reminder.ListCmd   `cmd:"" help:"List reminders." default:"1"`
		Show   reminder.ShowCmd   `cmd:"" help:"Show a reminder."`
		Delete reminder.DeleteCmd `cmd:"" help:"Delete reminders by ID or list position."`
	} `cmd:"" help:"Manage reminders."`
	Voice struct {
		Record voice.RecordCmd `cmd:"" help:"Record a voice note."`
		List   voice.ListCmd   `cmd:"" help:"List voice notes." default:"1"`
		Play   voice.PlayCmd   `cmd:"" help:"Play a voice note."`
		Delete voice.DeleteCmd `cmd:"" help:"Delete a voice note."`
	} `cmd:"" help:"Record and play voice notes."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL password in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored PostgreSQL password."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage the PostgreSQL password in the OS keyring."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
}

// storeless commands open the store themselves or never need it.
var storeless = map[string]bool{
	"init":    true,
	"doctor":  true,
	"keyring": true,
	"backup":  true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Voice memos and reminders with local notifications"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": config.GetDefaultConfigPath(),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.Storage.Path = CLI.DB
		if !storage.IsPostgres(CLI.DB) {
			cfg.Storage.Path = config.ExpandPath(CLI.DB)
		}
	}
	if CLI.Debug {
		cfg.Log.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug: cfg.Log.Debug,
		Dir:   filepath.Join(config.ExpandPath(constants.DefaultConfigDir), "logs"),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	command := strings.Fields(kctx.Command())[0]

	// doctor reports configuration problems itself
	if err := cfg.Validate(); err != nil && command != "doctor" {
		errors.Fatalf("invalid configuration: %v", err)
	}

	app := &cli.Context{Ctx: context.Background(), Config: cfg}

	if !storeless[command] {
		if err := app.Open(false); err != nil {
			errors.Fatalf("%v\nRun '%s init' to create the database.", err, constants.AppName)
		}
	}

	err = kctx.Run(app)
	app.Close()
	if err != nil {
		errors.Fatal(err)
	}
	_ = logger.Close()
}
