package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/keyring"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/storage/postgres"
	"github.com/julianstephens/murmur/internal/storage/sqlite"
)

// IsPostgres reports whether dsn names a PostgreSQL database rather than a SQLite file.
func IsPostgres(dsn string) bool {
	return postgres.IsURL(dsn)
}

// New selects the store for dsn without connecting. PostgreSQL URLs must not
// embed a password; when PGPASSWORD is unset the password is looked up in the
// OS keyring under the URL's user.
func New(dsn string) (Provider, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: empty storage path", errors.ErrStoreOpen)
	}

	if !IsPostgres(dsn) {
		return sqlite.NewStore(dsn), nil
	}

	if valid, err := postgres.ValidateConnString(dsn); !valid {
		return nil, errors.Wrap(errors.ErrStoreOpen, err)
	}

	connStr := dsn
	if os.Getenv("PGPASSWORD") == "" {
		password, err := keyring.GetPassword(ConnUser(dsn))
		switch {
		case err == nil:
			if connStr, err = postgres.WithPassword(dsn, password); err != nil {
				return nil, errors.Wrap(errors.ErrStoreOpen, err)
			}
		case stderrors.Is(err, keyring.ErrNotFound):
			logger.Debug("No keyring password for PostgreSQL user, relying on .pgpass")
		default:
			logger.Warn("OS keyring unavailable", "error", err)
		}
	}

	return postgres.New(connStr), nil
}

// ConnUser returns the user named in a PostgreSQL URL, or "".
func ConnUser(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return ""
	}
	return u.User.Username()
}

// Open returns a ready store. With create set the database and schema are
// created as needed; otherwise an existing database is loaded. Every failure
// wraps errors.ErrStoreOpen and leaves nothing open.
func Open(ctx context.Context, dsn string, create bool) (Provider, error) {
	store, err := New(dsn)
	if err != nil {
		return nil, err
	}

	if create {
		err = store.Init(ctx)
	} else {
		err = store.Load(ctx)
	}
	if err != nil {
		_ = store.Close()
		logger.Error("Failed to open store", "path", store.GetConfigPath(), "error", err)
		return nil, errors.Wrap(errors.ErrStoreOpen, err)
	}

	return store, nil
}
