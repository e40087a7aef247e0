package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/keyring"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/storage/postgres"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
)

// ErrEmbeddedPassword is returned for PostgreSQL connection strings passed
// on the command line with a password in them.
var ErrEmbeddedPassword = errors.New("PostgreSQL connection strings with embedded passwords are not allowed on the command line; " +
	"use 'habitlit keyring set', " + constants.EnvDBConnection + " or a .pgpass file")

// OpenStore picks the storage backend. An explicit --db value wins; without
// one a connection string from the environment or the OS keyring selects
// PostgreSQL, and the default SQLite file is used otherwise.
func OpenStore(dbFlag string) (storage.Provider, error) {
	if dbFlag != "" && !storage.IsPostgresConnString(dbFlag) {
		path, err := config.ExpandPath(dbFlag)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}

	connStr, source, err := keyring.Resolve(dbFlag)
	if err != nil {
		return nil, err
	}
	if connStr == "" {
		path, err := config.ExpandPath(constants.DefaultConfigPath)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}

	if _, err := postgres.ValidateConnString(connStr); err != nil {
		// stored credentials are allowed to carry a password
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("invalid connection string from %s: %w", source, err)
		}
		if source == keyring.SourceFlag {
			return nil, ErrEmbeddedPassword
		}
	}
	logger.Debug("Using PostgreSQL storage", "source", source)
	return postgres.New(connStr), nil
}
