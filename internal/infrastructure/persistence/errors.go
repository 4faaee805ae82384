package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the repositories react to
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgLockNotAvailable    = "55P03"
	pgQueryCanceled       = "57014"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgNumericOutOfRange   = "22003"
	pgStringTooLong       = "22001"
)

// isUniqueViolation reports whether err was raised by a unique constraint
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isForeignKeyViolation reports whether err was raised by a foreign key constraint
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// isTimeout reports whether err means the statement gave up waiting for a lock or the deadline
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgQueryCanceled, pgSerializationFail, pgDeadlockDetected:
			return true
		}
		return false
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// isOutOfRange reports whether a value did not fit its column
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgNumericOutOfRange || pgErr.Code == pgStringTooLong
	}
	return false
}

// classifyQueryError tells the SQL logger which failures are routine
func classifyQueryError(err error) logger.QueryOutcome {
	switch {
	case isUniqueViolation(err), isForeignKeyViolation(err), isOutOfRange(err):
		return logger.OutcomeExpected
	case isTimeout(err):
		return logger.OutcomeContention
	default:
		return logger.OutcomeFailure
	}
}

// translateError maps driver errors that carry no repository-specific meaning.
// Domain errors pass through untouched; notFoundMsg names the missing record, if any.
func translateError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFoundMsg == "" {
			return shared.ErrNotFound
		}
		return shared.NewDomainError(shared.CodeNotFound, notFoundMsg)
	case isTimeout(err):
		return shared.WrapDomainError(shared.CodeTimeout, "The database did not respond in time, please retry", err)
	case isForeignKeyViolation(err):
		return shared.WrapDomainError(shared.CodeReferential, "The operation references a record that does not exist or is still in use", err)
	case isOutOfRange(err):
		return shared.WrapDomainError(shared.CodeValidation, "A value is too large for its field", err)
	}
	return fmt.Errorf("database error: %w", err)
}
