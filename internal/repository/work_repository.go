package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresShiftRepository implements domain.ShiftRepository. Shift rows are
// brand-scoped; the organization filter joins through brands.
type PostgresShiftRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresShiftRepository creates a new shift repository.
func NewPostgresShiftRepository(db *sql.DB, logger *slog.Logger) *PostgresShiftRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresShiftRepository{db: db, logger: logger}
}

func (r *PostgresShiftRepository) Create(ctx context.Context, shift *domain.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	query := `
		INSERT INTO shifts (id, brand_id, name, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, shift.ID, shift.BrandID, shift.Name, shift.SortOrder).
		Scan(&shift.CreatedAt, &shift.UpdatedAt)
	return translateError(err, "shift")
}

func (r *PostgresShiftRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Shift, error) {
	s := &domain.Shift{}
	query := `
		SELECT s.id, s.brand_id, s.name, s.sort_order, s.created_at, s.updated_at
		FROM shifts s
		JOIN brands b ON b.id = s.brand_id
		WHERE s.id = $1 AND b.organization_id = $2
	`
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&s.ID, &s.BrandID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, "shift")
	}
	return s, nil
}

func (r *PostgresShiftRepository) Update(ctx context.Context, orgID uuid.UUID, shift *domain.Shift) error {
	query := `
		UPDATE shifts s
		SET name = $1, sort_order = $2, updated_at = now()
		FROM brands b
		WHERE s.id = $3 AND b.id = s.brand_id AND b.organization_id = $4
		RETURNING s.updated_at
	`
	err := r.db.QueryRowContext(ctx, query, shift.Name, shift.SortOrder, shift.ID, orgID).
		Scan(&shift.UpdatedAt)
	return translateError(err, "shift")
}

func (r *PostgresShiftRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM shifts s
		USING brands b
		WHERE s.id = $1 AND b.id = s.brand_id AND b.organization_id = $2
	`, id, orgID)
	if err != nil {
		return translateError(err, "shift")
	}
	return rowsAffected(res, "shift")
}

func (r *PostgresShiftRepository) ListByBrand(ctx context.Context, orgID, brandID uuid.UUID) ([]*domain.Shift, error) {
	query := `
		SELECT s.id, s.brand_id, s.name, s.sort_order, s.created_at, s.updated_at
		FROM shifts s
		JOIN brands b ON b.id = s.brand_id
		WHERE s.brand_id = $1 AND b.organization_id = $2
		ORDER BY s.sort_order, s.name
	`
	rows, err := r.db.QueryContext(ctx, query, brandID, orgID)
	if err != nil {
		return nil, translateError(err, "shift")
	}
	defer rows.Close()

	var out []*domain.Shift
	for rows.Next() {
		s := &domain.Shift{}
		if err := rows.Scan(&s.ID, &s.BrandID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, translateError(err, "shift")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PostgresPositionRepository implements domain.PositionRepository.
type PostgresPositionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPositionRepository creates a new position repository.
func NewPostgresPositionRepository(db *sql.DB, logger *slog.Logger) *PostgresPositionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPositionRepository{db: db, logger: logger}
}

func (r *PostgresPositionRepository) Create(ctx context.Context, position *domain.Position) error {
	if position.ID == uuid.Nil {
		position.ID = uuid.New()
	}
	query := `
		INSERT INTO positions (id, brand_id, name, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, position.ID, position.BrandID, position.Name, position.SortOrder).
		Scan(&position.CreatedAt, &position.UpdatedAt)
	return translateError(err, "position")
}

func (r *PostgresPositionRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Position, error) {
	p := &domain.Position{}
	query := `
		SELECT p.id, p.brand_id, p.name, p.sort_order, p.created_at, p.updated_at
		FROM positions p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.id = $1 AND b.organization_id = $2
	`
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&p.ID, &p.BrandID, &p.Name, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, "position")
	}
	return p, nil
}

func (r *PostgresPositionRepository) Update(ctx context.Context, orgID uuid.UUID, position *domain.Position) error {
	query := `
		UPDATE positions p
		SET name = $1, sort_order = $2, updated_at = now()
		FROM brands b
		WHERE p.id = $3 AND b.id = p.brand_id AND b.organization_id = $4
		RETURNING p.updated_at
	`
	err := r.db.QueryRowContext(ctx, query, position.Name, position.SortOrder, position.ID, orgID).
		Scan(&position.UpdatedAt)
	return translateError(err, "position")
}

func (r *PostgresPositionRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM positions p
		USING brands b
		WHERE p.id = $1 AND b.id = p.brand_id AND b.organization_id = $2
	`, id, orgID)
	if err != nil {
		return translateError(err, "position")
	}
	return rowsAffected(res, "position")
}

func (r *PostgresPositionRepository) ListByBrand(ctx context.Context, orgID, brandID uuid.UUID) ([]*domain.Position, error) {
	query := `
		SELECT p.id, p.brand_id, p.name, p.sort_order, p.created_at, p.updated_at
		FROM positions p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.brand_id = $1 AND b.organization_id = $2
		ORDER BY p.sort_order, p.name
	`
	rows, err := r.db.QueryContext(ctx, query, brandID, orgID)
	if err != nil {
		return nil, translateError(err, "position")
	}
	defer rows.Close()

	var out []*domain.Position
	for rows.Next() {
		p := &domain.Position{}
		if err := rows.Scan(&p.ID, &p.BrandID, &p.Name, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, translateError(err, "position")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
