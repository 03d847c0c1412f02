package backups

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/murmur/internal/backup"
	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/storage"
)

func manager(ctx *cli.Context) (*backup.Manager, error) {
	path := ctx.Config.Storage.Path
	if storage.IsPostgres(path) || path == constants.MemoryDSN {
		return nil, fmt.Errorf("backups are only supported for SQLite database files; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(path), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create(ctx.Ctx)
	if err != nil {
		return err
	}
	cli.Success("Backup created: %s", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Printf("No backups in %s\n", mgr.Dir())
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%-36s %-20s %10s", "File", "Created", "Size")))
	for _, b := range backups {
		fmt.Printf("%-36s %-20s %10d\n", filepath.Base(b.Path), b.Timestamp.Format("2006-01-02 15:04:05"), b.Size)
	}
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Backup file name (from 'backup list') or path."`
	Yes  bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	path := c.File
	if filepath.Base(path) == path {
		path = filepath.Join(mgr.Dir(), path)
	}

	if !c.Yes {
		ok := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Replace the database with %s?", filepath.Base(path))).
			Value(&ok).
			Run()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	previous, err := mgr.Restore(ctx.Ctx, path)
	if err != nil {
		return err
	}
	if previous != "" {
		fmt.Printf("Created backup of current database: %s\n", filepath.Base(previous))
	}
	cli.Success("Database restored from %s", filepath.Base(path))
	return nil
}
