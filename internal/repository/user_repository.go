package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository.
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository.
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserRepository{db: db, logger: logger}
}

const userColumns = `id, organization_id, role_id, username, email, full_name, password_hash, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.RoleID, &u.Username, &u.Email,
		&u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, organization_id, role_id, username, email, full_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.OrganizationID, user.RoleID, user.Username, user.Email,
		user.FullName, user.PasswordHash, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create user",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
	}
	return translateError(err, "user")
}

// GetByID retrieves a user within the organization.
func (r *PostgresUserRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND organization_id = $2`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, orgID))
	if err != nil {
		return nil, translateError(err, "user")
	}
	return u, nil
}

// GetByUsername retrieves an active user by username within the organization.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, orgID uuid.UUID, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND organization_id = $2 AND is_active = true`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, username, orgID))
	if err != nil {
		return nil, translateError(err, "user")
	}
	return u, nil
}

// Update updates a user's mutable fields.
func (r *PostgresUserRepository) Update(ctx context.Context, orgID uuid.UUID, user *domain.User) error {
	query := `
		UPDATE users
		SET role_id = $1, username = $2, email = $3, full_name = $4, password_hash = $5, is_active = $6, updated_at = now()
		WHERE id = $7 AND organization_id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.RoleID, user.Username, user.Email, user.FullName,
		user.PasswordHash, user.IsActive, user.ID, orgID,
	).Scan(&user.UpdatedAt)
	return translateError(err, "user")
}

// Deactivate soft-deletes a user.
func (r *PostgresUserRepository) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = false, updated_at = now() WHERE id = $1 AND organization_id = $2`,
		id, orgID)
	if err != nil {
		return translateError(err, "user")
	}
	return rowsAffected(res, "user")
}

// ListByOrganization lists active users for an organization.
func (r *PostgresUserRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE organization_id = $1 AND is_active = true ORDER BY full_name`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, translateError(err, "user")
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translateError(err, "user")
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// PostgresRoleRepository implements domain.RoleRepository.
type PostgresRoleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRoleRepository creates a new role repository.
func NewPostgresRoleRepository(db *sql.DB, logger *slog.Logger) *PostgresRoleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRoleRepository{db: db, logger: logger}
}

func (r *PostgresRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	query := `
		INSERT INTO roles (id, organization_id, name, level)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, role.ID, role.OrganizationID, role.Name, role.Level).
		Scan(&role.CreatedAt, &role.UpdatedAt)
	return translateError(err, "role")
}

func (r *PostgresRoleRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Role, error) {
	role := &domain.Role{}
	query := `
		SELECT id, organization_id, name, level, created_at, updated_at
		FROM roles
		WHERE id = $1 AND organization_id = $2
	`
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&role.ID, &role.OrganizationID, &role.Name, &role.Level, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, "role")
	}
	return role, nil
}

func (r *PostgresRoleRepository) Update(ctx context.Context, orgID uuid.UUID, role *domain.Role) error {
	query := `
		UPDATE roles
		SET name = $1, level = $2, updated_at = now()
		WHERE id = $3 AND organization_id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, role.Name, role.Level, role.ID, orgID).Scan(&role.UpdatedAt)
	return translateError(err, "role")
}

func (r *PostgresRoleRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM roles WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return translateError(err, "role")
	}
	return rowsAffected(res, "role")
}

func (r *PostgresRoleRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Role, error) {
	query := `
		SELECT id, organization_id, name, level, created_at, updated_at
		FROM roles
		WHERE organization_id = $1
		ORDER BY level
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, translateError(err, "role")
	}
	defer rows.Close()

	var out []*domain.Role
	for rows.Next() {
		role := &domain.Role{}
		if err := rows.Scan(&role.ID, &role.OrganizationID, &role.Name, &role.Level, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, translateError(err, "role")
		}
		out = append(out, role)
	}
	return out, rows.Err()
}
