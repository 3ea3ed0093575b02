// Package keyring keeps the PostgreSQL connection string in the OS keyring
// so it never lands in shell history or config files.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/riseroll/internal/constants"
)

var (
	// ErrNotFound is returned when nothing is stored for the entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrUnavailable is returned when the OS keyring cannot be reached
	ErrUnavailable = errors.New("OS keyring is not available")
)

// Entry is a single secret addressed by service and user.
type Entry struct {
	service string
	user    string
}

// Default returns the entry that holds the riseroll database connection.
func Default() Entry {
	return Entry{service: constants.AppName, user: constants.DefaultKeyringUser}
}

func (e Entry) Get() (string, error) {
	secret, err := gokeyring.Get(e.service, e.user)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return secret, nil
}

func (e Entry) Set(secret string) error {
	if secret == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := gokeyring.Set(e.service, e.user, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (e Entry) Delete() error {
	err := gokeyring.Delete(e.service, e.user)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available reports whether the keyring answered a probe read. A missing
// entry still counts as available.
func (e Entry) Available() bool {
	_, err := gokeyring.Get(e.service, "probe")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}

// Status summarizes the entry for display.
func (e Entry) Status() string {
	if !e.Available() {
		return "unavailable"
	}
	if _, err := e.Get(); err != nil {
		return "empty"
	}
	return "stored"
}
