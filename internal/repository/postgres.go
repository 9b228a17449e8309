package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// Postgres error codes we translate into the domain error taxonomy.
const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// translateError maps low-level database failures onto domain errors so the
// service layer never inspects driver types. Unique violations and
// serialization conflicts both surface as ConflictError; the caller may
// retry the latter.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(resource)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return domain.Conflict("%s already exists", resource)
		case pqForeignKeyViolation:
			return domain.Invalid("%s references a missing entity", resource)
		case pqSerializationFailure, pqDeadlockDetected:
			return domain.Conflict("concurrent update on %s, retry", resource)
		}
	}
	return fmt.Errorf("%s query failed: %w", resource, err)
}

// normalizePage clamps pagination inputs to sane bounds.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// rowsAffected turns a zero-row UPDATE/DELETE into a NotFoundError.
func rowsAffected(res sql.Result, resource string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound(resource)
	}
	return nil
}
