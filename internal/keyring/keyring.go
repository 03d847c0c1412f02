package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/murmur/internal/constants"
)

var (
	// ErrNotFound is returned when no password is stored for the user
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// User resolves an empty database user to the default keyring entry.
func User(u string) string {
	if u == "" {
		return constants.DefaultKeyringUser
	}
	return u
}

// GetPassword returns the PostgreSQL password stored for the database user.
// An empty user selects the default entry.
func GetPassword(u string) (string, error) {
	password, err := keyring.Get(constants.AppName, User(u))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return password, nil
}

// SetPassword stores the PostgreSQL password for the database user.
func SetPassword(u, password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if err := keyring.Set(constants.AppName, User(u), password); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func DeletePassword(u string) error {
	err := keyring.Delete(constants.AppName, User(u))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable is a best-effort check that the OS keyring answers at all.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// State describes what the keyring holds for a database user.
type State int

const (
	Unavailable State = iota
	Missing
	Stored
)

func (s State) String() string {
	switch s {
	case Missing:
		return "missing"
	case Stored:
		return "stored"
	default:
		return "unavailable"
	}
}

// Check reports whether a password is stored for u. The error is non-nil
// only when the keyring itself cannot be queried.
func Check(u string) (State, error) {
	if !IsAvailable() {
		return Unavailable, ErrKeyringUnavailable
	}
	_, err := GetPassword(u)
	switch {
	case err == nil:
		return Stored, nil
	case errors.Is(err, ErrNotFound):
		return Missing, nil
	default:
		return Unavailable, err
	}
}
