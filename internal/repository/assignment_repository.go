package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresAssignmentRepository implements domain.AssignmentRepository. The
// checklist snapshot lives in a JSONB column of the assignment row, so the
// assignment insert and snapshot write are one atomic statement, and
// completion updates serialize on the row lock taken by UpdateWithLock.
type PostgresAssignmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAssignmentRepository creates a new assignment repository.
func NewPostgresAssignmentRepository(db *sql.DB, logger *slog.Logger) *PostgresAssignmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAssignmentRepository{db: db, logger: logger}
}

const assignmentColumns = `id, organization_id, brand_id, shift_id, position_id, user_id, assigned_by, work_date, status, checklist_snapshot, created_at, updated_at`

func scanAssignment(row interface{ Scan(...any) error }) (*domain.WorkAssignment, error) {
	a := &domain.WorkAssignment{}
	var snapshotRaw []byte
	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.BrandID, &a.ShiftID, &a.PositionID,
		&a.UserID, &a.AssignedBy, &a.WorkDate, &a.Status, &snapshotRaw,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Snapshot = &domain.ChecklistSnapshot{}
	if err := json.Unmarshal(snapshotRaw, a.Snapshot); err != nil {
		return nil, fmt.Errorf("decode checklist snapshot: %w", err)
	}
	return a, nil
}

// Create inserts a new assignment with its snapshot. The unique constraint
// on (brand, shift, position, user, work_date) maps to ConflictError.
func (r *PostgresAssignmentRepository) Create(ctx context.Context, a *domain.WorkAssignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	snapshotRaw, err := json.Marshal(a.Snapshot)
	if err != nil {
		return fmt.Errorf("encode checklist snapshot: %w", err)
	}
	query := `
		INSERT INTO work_assignments
			(id, organization_id, brand_id, shift_id, position_id, user_id, assigned_by, work_date, status, checklist_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		a.ID, a.OrganizationID, a.BrandID, a.ShiftID, a.PositionID,
		a.UserID, a.AssignedBy, a.WorkDate, a.Status, snapshotRaw,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return translateError(err, "work assignment")
}

// GetByID retrieves an assignment within the organization.
func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.WorkAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM work_assignments WHERE id = $1 AND organization_id = $2`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, id, orgID))
	if err != nil {
		return nil, translateError(err, "work assignment")
	}
	return a, nil
}

func (r *PostgresAssignmentRepository) list(ctx context.Context, orgID uuid.UUID, userID *uuid.UUID, f domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	if userID == nil {
		userID = f.UserID
	}
	var status *string
	if f.Status != "" {
		s := string(f.Status)
		status = &s
	}

	where := `
		WHERE organization_id = $1
		  AND ($2::uuid IS NULL OR brand_id = $2)
		  AND ($3::uuid IS NULL OR user_id = $3)
		  AND ($4::text IS NULL OR status = $4)
		  AND ($5::date IS NULL OR work_date >= $5)
		  AND ($6::date IS NULL OR work_date <= $6)
	`
	args := []any{orgID, f.BrandID, userID, status, f.DateFrom, f.DateTo}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM work_assignments`+where, args...).Scan(&total); err != nil {
		return nil, 0, translateError(err, "work assignment")
	}

	query := `SELECT ` + assignmentColumns + ` FROM work_assignments` + where + `
		ORDER BY work_date, created_at
		LIMIT $7 OFFSET $8
	`
	rows, err := r.db.QueryContext(ctx, query, append(args, f.PerPage, (f.Page-1)*f.PerPage)...)
	if err != nil {
		return nil, 0, translateError(err, "work assignment")
	}
	defer rows.Close()

	var out []*domain.WorkAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, translateError(err, "work assignment")
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// List returns a filtered page of assignments ordered by work_date, then
// created_at.
func (r *PostgresAssignmentRepository) List(ctx context.Context, orgID uuid.UUID, f domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	return r.list(ctx, orgID, nil, f)
}

// ListByUser returns a single user's assignments.
func (r *PostgresAssignmentRepository) ListByUser(ctx context.Context, orgID, userID uuid.UUID, f domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	return r.list(ctx, orgID, &userID, f)
}

// Delete removes an assignment and its embedded snapshot.
func (r *PostgresAssignmentRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM work_assignments WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return translateError(err, "work assignment")
	}
	return rowsAffected(res, "work assignment")
}

// UpdateWithLock loads the assignment under SELECT ... FOR UPDATE, applies
// fn, and persists the mutated snapshot and status in the same transaction.
// Concurrent item completions on the same assignment serialize here;
// different assignments never contend.
func (r *PostgresAssignmentRepository) UpdateWithLock(ctx context.Context, orgID, id uuid.UUID, fn func(a *domain.WorkAssignment) error) (*domain.WorkAssignment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + assignmentColumns + ` FROM work_assignments WHERE id = $1 AND organization_id = $2 FOR UPDATE`
	a, err := scanAssignment(tx.QueryRowContext(ctx, query, id, orgID))
	if err != nil {
		return nil, translateError(err, "work assignment")
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	snapshotRaw, err := json.Marshal(a.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode checklist snapshot: %w", err)
	}
	err = tx.QueryRowContext(ctx, `
		UPDATE work_assignments
		SET status = $1, checklist_snapshot = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, a.Status, snapshotRaw, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		return nil, translateError(err, "work assignment")
	}

	if err := tx.Commit(); err != nil {
		return nil, translateError(err, "work assignment")
	}
	return a, nil
}

// MarkMissed flips assignments whose work date has fully elapsed and still
// carry incomplete items to the terminal missed status.
func (r *PostgresAssignmentRepository) MarkMissed(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE work_assignments
		SET status = $1, updated_at = now()
		WHERE work_date < $2 AND status IN ($3, $4)
	`, domain.StatusMissed, before, domain.StatusAssigned, domain.StatusInProgress)
	if err != nil {
		return 0, translateError(err, "work assignment")
	}
	return res.RowsAffected()
}
