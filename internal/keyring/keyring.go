package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitlit/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("no connection string stored in keyring")
	// ErrUnavailable is returned when the OS keyring cannot be reached
	ErrUnavailable = errors.New("OS keyring is not available")
)

// Source names where a connection string came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

func GetConnectionString() (string, error) {
	connStr, err := gokeyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return connStr, nil
}

func SetConnectionString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := gokeyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	return nil
}

func DeleteConnectionString() error {
	if err := gokeyring.Delete(constants.AppName, constants.DefaultKeyringUser); err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	return nil
}

// IsAvailable reports whether a keyring read succeeds. An empty keyring
// still counts as available.
func IsAvailable() bool {
	_, err := gokeyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}

// Resolve picks the PostgreSQL connection string to use. An explicit value
// wins, then HABITLIT_DB_CONNECTION, then the keyring. It returns an empty
// string without error when nothing is configured.
func Resolve(explicit string) (string, Source, error) {
	if explicit != "" {
		return explicit, SourceFlag, nil
	}
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		return env, SourceEnv, nil
	}
	connStr, err := GetConnectionString()
	switch {
	case err == nil:
		return connStr, SourceKeyring, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return "", "", nil
	default:
		return "", "", err
	}
}

// MaskPassword hides the password of a URI or key/value connection string.
func MaskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		at := strings.LastIndex(rest, "@")
		if at == -1 {
			return connStr
		}
		userInfo := rest[:at]
		colon := strings.Index(userInfo, ":")
		if colon == -1 {
			return connStr
		}
		return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
