package storage

import (
	"database/sql"
	"errors"
	"strings"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
)

// Classify converts a driver error into an engine error. isConstraint reports
// whether err is a constraint violation for the calling driver.
func Classify(op string, err error, isConstraint func(error) bool) error {
	if err == nil {
		return nil
	}
	if apperrors.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(op, "record not found")
	}
	if isConstraint != nil && isConstraint(err) {
		return apperrors.Conflict(op, err)
	}
	return apperrors.Store(op, err)
}

// RequireAffected turns a zero-row write into a NotFoundError.
func RequireAffected(op string, result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Store(op, err)
	}
	if rows == 0 {
		return apperrors.NotFound(op, "%s not found", what)
	}
	return nil
}

// IsPostgresConnString reports whether s looks like a PostgreSQL URI or DSN.
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") || strings.Contains(s, "host=")
}
