package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresAnnouncementRepository implements domain.AnnouncementRepository.
type PostgresAnnouncementRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAnnouncementRepository creates a new announcement repository.
func NewPostgresAnnouncementRepository(db *sql.DB, logger *slog.Logger) *PostgresAnnouncementRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAnnouncementRepository{db: db, logger: logger}
}

const announcementColumns = `id, organization_id, brand_id, author_id, title, body, created_at`

func scanAnnouncement(row interface{ Scan(...any) error }) (*domain.Announcement, error) {
	a := &domain.Announcement{}
	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.BrandID, &a.AuthorID,
		&a.Title, &a.Body, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new announcement. A nil brand id means org-wide.
func (r *PostgresAnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	query := `
		INSERT INTO announcements (id, organization_id, brand_id, author_id, title, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.OrganizationID, a.BrandID, a.AuthorID, a.Title, a.Body,
	).Scan(&a.CreatedAt)
	return translateError(err, "announcement")
}

// GetByID retrieves an announcement within the organization.
func (r *PostgresAnnouncementRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1 AND organization_id = $2`
	a, err := scanAnnouncement(r.db.QueryRowContext(ctx, query, id, orgID))
	if err != nil {
		return nil, translateError(err, "announcement")
	}
	return a, nil
}

// Delete removes an announcement.
func (r *PostgresAnnouncementRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM announcements WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return translateError(err, "announcement")
	}
	return rowsAffected(res, "announcement")
}

// List returns announcements visible to a brand, newest first: org-wide
// entries plus entries scoped to the given brand. A nil brand id lists
// everything in the organization.
func (r *PostgresAnnouncementRepository) List(ctx context.Context, orgID uuid.UUID, brandID *uuid.UUID, page, perPage int) ([]*domain.Announcement, int, error) {
	page, perPage = normalizePage(page, perPage)

	var total int
	countQuery := `
		SELECT count(*) FROM announcements
		WHERE organization_id = $1
		  AND ($2::uuid IS NULL OR brand_id IS NULL OR brand_id = $2)
	`
	if err := r.db.QueryRowContext(ctx, countQuery, orgID, brandID).Scan(&total); err != nil {
		return nil, 0, translateError(err, "announcement")
	}

	query := `
		SELECT ` + announcementColumns + `
		FROM announcements
		WHERE organization_id = $1
		  AND ($2::uuid IS NULL OR brand_id IS NULL OR brand_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, brandID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, translateError(err, "announcement")
	}
	defer rows.Close()

	var out []*domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, translateError(err, "announcement")
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
