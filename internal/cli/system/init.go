package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	path := ctx.Config.Storage.Path

	if c.Force {
		if storage.IsPostgres(path) || path == constants.MemoryDSN {
			return fmt.Errorf("--force only applies to SQLite database files")
		}
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Open(true); err != nil {
		return err
	}

	if err := os.MkdirAll(ctx.Config.Audio.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	cli.Success("Initialized %s storage at: %s", constants.AppName, ctx.Store.GetConfigPath())
	fmt.Printf("  Voice notes are recorded to: %s\n", ctx.Config.Audio.Dir)
	return nil
}
