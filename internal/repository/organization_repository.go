package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresOrganizationRepository implements domain.OrganizationRepository.
type PostgresOrganizationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrganizationRepository creates a new organization repository.
func NewPostgresOrganizationRepository(db *sql.DB, logger *slog.Logger) *PostgresOrganizationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOrganizationRepository{db: db, logger: logger}
}

// Create inserts a new organization.
func (r *PostgresOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	query := `
		INSERT INTO organizations (id, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, org.ID, org.Name, org.IsActive).
		Scan(&org.CreatedAt, &org.UpdatedAt)
	return translateError(err, "organization")
}

// GetByID retrieves an organization by id.
func (r *PostgresOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	org := &domain.Organization{}
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.IsActive, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, "organization")
	}
	return org, nil
}

// Update updates an organization's mutable fields.
func (r *PostgresOrganizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	query := `
		UPDATE organizations
		SET name = $1, is_active = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, org.Name, org.IsActive, org.ID).Scan(&org.UpdatedAt)
	return translateError(err, "organization")
}

// Deactivate soft-deletes an organization.
func (r *PostgresOrganizationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE organizations SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "organization")
	}
	return rowsAffected(res, "organization")
}

// List returns all organizations, newest first.
func (r *PostgresOrganizationRepository) List(ctx context.Context) ([]*domain.Organization, error) {
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err, "organization")
	}
	defer rows.Close()

	var out []*domain.Organization
	for rows.Next() {
		org := &domain.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, translateError(err, "organization")
		}
		out = append(out, org)
	}
	return out, rows.Err()
}
