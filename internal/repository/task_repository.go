package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresTaskRepository implements domain.TaskRepository.
type PostgresTaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskRepository creates a new ad-hoc task repository.
func NewPostgresTaskRepository(db *sql.DB, logger *slog.Logger) *PostgresTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskRepository{db: db, logger: logger}
}

const taskColumns = `id, organization_id, brand_id, user_id, assigned_by, title, description, due_date, status, completed_at, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*domain.AdditionalTask, error) {
	t := &domain.AdditionalTask{}
	var due, completed sql.NullTime
	err := row.Scan(
		&t.ID, &t.OrganizationID, &t.BrandID, &t.UserID, &t.AssignedBy,
		&t.Title, &t.Description, &due, &t.Status, &completed,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	if completed.Valid {
		t.CompletedAt = &completed.Time
	}
	return t, nil
}

// Create inserts a new task.
func (r *PostgresTaskRepository) Create(ctx context.Context, task *domain.AdditionalTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	query := `
		INSERT INTO additional_tasks (id, organization_id, brand_id, user_id, assigned_by, title, description, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OrganizationID, task.BrandID, task.UserID, task.AssignedBy,
		task.Title, task.Description, task.DueDate, task.Status,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	return translateError(err, "task")
}

// GetByID retrieves a task within the organization.
func (r *PostgresTaskRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.AdditionalTask, error) {
	query := `SELECT ` + taskColumns + ` FROM additional_tasks WHERE id = $1 AND organization_id = $2`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, orgID))
	if err != nil {
		return nil, translateError(err, "task")
	}
	return t, nil
}

// Update persists status and completion changes.
func (r *PostgresTaskRepository) Update(ctx context.Context, orgID uuid.UUID, task *domain.AdditionalTask) error {
	query := `
		UPDATE additional_tasks
		SET title = $1, description = $2, due_date = $3, status = $4, completed_at = $5, updated_at = now()
		WHERE id = $6 AND organization_id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.Status, task.CompletedAt,
		task.ID, orgID,
	).Scan(&task.UpdatedAt)
	return translateError(err, "task")
}

// Delete removes a task.
func (r *PostgresTaskRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM additional_tasks WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return translateError(err, "task")
	}
	return rowsAffected(res, "task")
}

// List returns tasks filtered by assignee and status.
func (r *PostgresTaskRepository) List(ctx context.Context, orgID uuid.UUID, userID *uuid.UUID, status domain.TaskStatus) ([]*domain.AdditionalTask, error) {
	var statusArg *string
	if status != "" {
		s := string(status)
		statusArg = &s
	}
	query := `
		SELECT ` + taskColumns + `
		FROM additional_tasks
		WHERE organization_id = $1
		  AND ($2::uuid IS NULL OR user_id = $2)
		  AND ($3::text IS NULL OR status = $3)
		ORDER BY due_date NULLS LAST, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, userID, statusArg)
	if err != nil {
		return nil, translateError(err, "task")
	}
	defer rows.Close()

	var out []*domain.AdditionalTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, translateError(err, "task")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
