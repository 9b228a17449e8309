package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresChecklistRepository implements domain.ChecklistRepository.
// Templates are organization-scoped through their owning brand.
type PostgresChecklistRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresChecklistRepository creates a new checklist repository.
func NewPostgresChecklistRepository(db *sql.DB, logger *slog.Logger) *PostgresChecklistRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChecklistRepository{db: db, logger: logger}
}

// CreateTemplate inserts a template together with its items in one
// transaction. The partial unique index on active (brand, shift, position)
// triples turns duplicate active templates into a ConflictError.
func (r *PostgresChecklistRepository) CreateTemplate(ctx context.Context, template *domain.ChecklistTemplate) error {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO checklist_templates (id, brand_id, shift_id, position_id, name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		template.ID, template.BrandID, template.ShiftID, template.PositionID,
		template.Name, template.IsActive,
	).Scan(&template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return translateError(err, "checklist template")
	}

	for i := range template.Items {
		item := &template.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.TemplateID = template.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO checklist_template_items (id, template_id, title, description, verification_type, sort_order, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`, item.ID, item.TemplateID, item.Title, item.Description,
			item.VerificationType, item.SortOrder, item.IsActive,
		).Scan(&item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return translateError(err, "checklist item")
		}
	}

	if err := tx.Commit(); err != nil {
		return translateError(err, "checklist template")
	}
	return nil
}

const templateColumns = `t.id, t.brand_id, t.shift_id, t.position_id, t.name, t.is_active, t.created_at, t.updated_at`

func (r *PostgresChecklistRepository) scanTemplate(ctx context.Context, row *sql.Row) (*domain.ChecklistTemplate, error) {
	t := &domain.ChecklistTemplate{}
	err := row.Scan(&t.ID, &t.BrandID, &t.ShiftID, &t.PositionID, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translateError(err, "checklist template")
	}
	if err := r.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresChecklistRepository) loadItems(ctx context.Context, t *domain.ChecklistTemplate) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, template_id, title, description, verification_type, sort_order, is_active, created_at, updated_at
		FROM checklist_template_items
		WHERE template_id = $1
		ORDER BY sort_order, id
	`, t.ID)
	if err != nil {
		return translateError(err, "checklist item")
	}
	defer rows.Close()

	t.Items = nil
	for rows.Next() {
		var it domain.ChecklistTemplateItem
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.Title, &it.Description,
			&it.VerificationType, &it.SortOrder, &it.IsActive, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return translateError(err, "checklist item")
		}
		t.Items = append(t.Items, it)
	}
	return rows.Err()
}

// GetTemplate retrieves a template with its items.
func (r *PostgresChecklistRepository) GetTemplate(ctx context.Context, orgID, id uuid.UUID) (*domain.ChecklistTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM checklist_templates t
		JOIN brands b ON b.id = t.brand_id
		WHERE t.id = $1 AND b.organization_id = $2
	`
	return r.scanTemplate(ctx, r.db.QueryRowContext(ctx, query, id, orgID))
}

// ActiveTemplateForCombo resolves the unique active template for a
// brand+shift+position triple.
func (r *PostgresChecklistRepository) ActiveTemplateForCombo(ctx context.Context, orgID, brandID, shiftID, positionID uuid.UUID) (*domain.ChecklistTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM checklist_templates t
		JOIN brands b ON b.id = t.brand_id
		WHERE t.brand_id = $1 AND t.shift_id = $2 AND t.position_id = $3
		  AND t.is_active = true AND b.organization_id = $4
	`
	return r.scanTemplate(ctx, r.db.QueryRowContext(ctx, query, brandID, shiftID, positionID, orgID))
}

// ListTemplates lists templates for an organization, optionally filtered by
// brand.
func (r *PostgresChecklistRepository) ListTemplates(ctx context.Context, orgID uuid.UUID, brandID *uuid.UUID) ([]*domain.ChecklistTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM checklist_templates t
		JOIN brands b ON b.id = t.brand_id
		WHERE b.organization_id = $1 AND ($2::uuid IS NULL OR t.brand_id = $2)
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, brandID)
	if err != nil {
		return nil, translateError(err, "checklist template")
	}
	defer rows.Close()

	var out []*domain.ChecklistTemplate
	for rows.Next() {
		t := &domain.ChecklistTemplate{}
		if err := rows.Scan(&t.ID, &t.BrandID, &t.ShiftID, &t.PositionID, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, translateError(err, "checklist template")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range out {
		if err := r.loadItems(ctx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateTemplate updates a template's name and active flag.
func (r *PostgresChecklistRepository) UpdateTemplate(ctx context.Context, orgID uuid.UUID, template *domain.ChecklistTemplate) error {
	query := `
		UPDATE checklist_templates t
		SET name = $1, is_active = $2, updated_at = now()
		FROM brands b
		WHERE t.id = $3 AND b.id = t.brand_id AND b.organization_id = $4
		RETURNING t.updated_at
	`
	err := r.db.QueryRowContext(ctx, query, template.Name, template.IsActive, template.ID, orgID).
		Scan(&template.UpdatedAt)
	return translateError(err, "checklist template")
}

// DeactivateTemplate soft-deletes a template. Snapshots generated from it
// are untouched; they carry their own copy of the template's content.
func (r *PostgresChecklistRepository) DeactivateTemplate(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checklist_templates t
		SET is_active = false, updated_at = now()
		FROM brands b
		WHERE t.id = $1 AND b.id = t.brand_id AND b.organization_id = $2
	`, id, orgID)
	if err != nil {
		return translateError(err, "checklist template")
	}
	return rowsAffected(res, "checklist template")
}

// AddItem appends an item to a template. The insert carries the organization
// check, so an out-of-org template id yields a NotFoundError.
func (r *PostgresChecklistRepository) AddItem(ctx context.Context, orgID uuid.UUID, item *domain.ChecklistTemplateItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	query := `
		INSERT INTO checklist_template_items (id, template_id, title, description, verification_type, sort_order, is_active)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (
			SELECT 1 FROM checklist_templates t
			JOIN brands b ON b.id = t.brand_id
			WHERE t.id = $2 AND b.organization_id = $8
		)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.TemplateID, item.Title, item.Description,
		item.VerificationType, item.SortOrder, item.IsActive, orgID,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	return translateError(err, "checklist template")
}

// UpdateItem updates an item's mutable fields. Existing snapshots are not
// affected.
func (r *PostgresChecklistRepository) UpdateItem(ctx context.Context, orgID uuid.UUID, item *domain.ChecklistTemplateItem) error {
	query := `
		UPDATE checklist_template_items i
		SET title = $1, description = $2, verification_type = $3, sort_order = $4, is_active = $5, updated_at = now()
		FROM checklist_templates t, brands b
		WHERE i.id = $6 AND i.template_id = $7 AND t.id = i.template_id
		  AND b.id = t.brand_id AND b.organization_id = $8
		RETURNING i.updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.Title, item.Description, item.VerificationType,
		item.SortOrder, item.IsActive, item.ID, item.TemplateID, orgID,
	).Scan(&item.UpdatedAt)
	return translateError(err, "checklist item")
}

// ReorderItems reassigns sort positions to match the given order inside one
// transaction, so a failed reorder leaves the previous order intact.
func (r *PostgresChecklistRepository) ReorderItems(ctx context.Context, orgID, templateID uuid.UUID, orderedItemIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM checklist_templates t
		JOIN brands b ON b.id = t.brand_id
		WHERE t.id = $1 AND b.organization_id = $2
	`, templateID, orgID).Scan(&one)
	if err != nil {
		return translateError(err, "checklist template")
	}

	for pos, itemID := range orderedItemIDs {
		res, err := tx.ExecContext(ctx, `
			UPDATE checklist_template_items
			SET sort_order = $1, updated_at = now()
			WHERE id = $2 AND template_id = $3
		`, pos+1, itemID, templateID)
		if err != nil {
			return translateError(err, "checklist item")
		}
		if err := rowsAffected(res, "checklist item"); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return translateError(err, "checklist item")
	}
	return nil
}
