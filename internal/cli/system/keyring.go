package system

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/keyring"
	"github.com/julianstephens/murmur/internal/storage"
)

// keyringUser picks the entry for the configured PostgreSQL URL's user.
func keyringUser(ctx *cli.Context, flag string) string {
	if flag != "" {
		return flag
	}
	if u := storage.ConnUser(ctx.Config.Storage.Path); u != "" {
		return u
	}
	return constants.DefaultKeyringUser
}

// KeyringSetCmd stores the PostgreSQL password in the OS keyring
type KeyringSetCmd struct {
	User string `help:"Database user (defaults to the user in the configured connection string)."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	user := keyringUser(ctx, cmd.User)

	var password string
	err := huh.NewInput().
		Title(fmt.Sprintf("PostgreSQL password for %s", user)).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Validate(func(s string) error {
			if s == "" {
				return errors.New("password cannot be empty")
			}
			return nil
		}).
		Run()
	if err != nil {
		return err
	}

	if err := keyring.SetPassword(user, password); err != nil {
		return err
	}

	cli.Success("Password for %s stored in OS keyring", user)
	fmt.Println("  Keep the connection string itself free of passwords.")
	return nil
}

// KeyringDeleteCmd removes the stored PostgreSQL password
type KeyringDeleteCmd struct {
	User string `help:"Database user (defaults to the user in the configured connection string)."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	user := keyringUser(ctx, cmd.User)
	if err := keyring.DeletePassword(user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no password stored for %s", user)
		}
		return err
	}
	cli.Success("Password for %s deleted from OS keyring", user)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct {
	User string `help:"Database user (defaults to the user in the configured connection string)."`
}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	user := keyringUser(ctx, cmd.User)
	state, err := keyring.Check(user)
	if err != nil {
		fmt.Println(cli.FailStyle.Render("❌ OS keyring is not available on this system"))
		return err
	}
	cli.Success("OS keyring is available")

	if state == keyring.Stored {
		cli.Success("Password stored for %s", user)
	} else {
		fmt.Printf("ℹ No password stored for %s\n", user)
	}
	return nil
}
