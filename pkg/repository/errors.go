package repository

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode      = "23505"
	pgConnectionClassPrefix = "08"
)

var (
	// ErrConstraintViolation indicates a unique constraint rejected a write.
	// On an upsert path this means the natural-key computation is wrong;
	// callers treat it as fatal, never as a retriable condition.
	ErrConstraintViolation = errors.New("unique constraint violation")
	// ErrConnectionLost indicates the connection to the store failed.
	// Ingestion cannot proceed without the store, so this aborts the run.
	ErrConnectionLost = errors.New("database connection lost")
)

// Translate maps low-level persistence failures onto the package sentinels.
// Unique violations become ErrConstraintViolation, connection-class failures
// (SQLSTATE 08xxx, bad connections) become ErrConnectionLost, everything else
// is returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgDuplicateKeyCode {
			return errors.Join(ErrConstraintViolation, err)
		}
		if strings.HasPrefix(pgErr.Code, pgConnectionClassPrefix) {
			return errors.Join(ErrConnectionLost, err)
		}
	}

	if errors.Is(err, driver.ErrBadConn) {
		return errors.Join(ErrConnectionLost, err)
	}

	return err
}
