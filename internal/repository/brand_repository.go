package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresBrandRepository implements domain.BrandRepository. Every query
// filters by organization_id so cross-tenant ids resolve to not-found.
type PostgresBrandRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBrandRepository creates a new brand repository.
func NewPostgresBrandRepository(db *sql.DB, logger *slog.Logger) *PostgresBrandRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBrandRepository{db: db, logger: logger}
}

// Create inserts a new brand.
func (r *PostgresBrandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	query := `
		INSERT INTO brands (id, organization_id, name, address, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		brand.ID, brand.OrganizationID, brand.Name, brand.Address, brand.IsActive,
	).Scan(&brand.CreatedAt, &brand.UpdatedAt)
	return translateError(err, "brand")
}

// GetByID retrieves a brand within the organization.
func (r *PostgresBrandRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Brand, error) {
	b := &domain.Brand{}
	query := `
		SELECT id, organization_id, name, address, is_active, created_at, updated_at
		FROM brands
		WHERE id = $1 AND organization_id = $2
	`
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&b.ID, &b.OrganizationID, &b.Name, &b.Address, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, "brand")
	}
	return b, nil
}

// Update updates a brand's mutable fields.
func (r *PostgresBrandRepository) Update(ctx context.Context, orgID uuid.UUID, brand *domain.Brand) error {
	query := `
		UPDATE brands
		SET name = $1, address = $2, is_active = $3, updated_at = now()
		WHERE id = $4 AND organization_id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		brand.Name, brand.Address, brand.IsActive, brand.ID, orgID,
	).Scan(&brand.UpdatedAt)
	return translateError(err, "brand")
}

// Deactivate soft-deletes a brand.
func (r *PostgresBrandRepository) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE brands SET is_active = false, updated_at = now() WHERE id = $1 AND organization_id = $2`,
		id, orgID)
	if err != nil {
		return translateError(err, "brand")
	}
	return rowsAffected(res, "brand")
}

// ListByOrganization returns the organization's active brands.
func (r *PostgresBrandRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Brand, error) {
	query := `
		SELECT id, organization_id, name, address, is_active, created_at, updated_at
		FROM brands
		WHERE organization_id = $1 AND is_active = true
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, translateError(err, "brand")
	}
	defer rows.Close()

	var out []*domain.Brand
	for rows.Next() {
		b := &domain.Brand{}
		if err := rows.Scan(&b.ID, &b.OrganizationID, &b.Name, &b.Address, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, translateError(err, "brand")
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
