package domain

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// VerificationType governs what evidence completing an item requires.
// Only "none" is active; "photo" and "text" are reserved for later phases
// but already validated so snapshots stay forward-compatible.
type VerificationType string

const (
	VerificationNone  VerificationType = "none"
	VerificationPhoto VerificationType = "photo"
	VerificationText  VerificationType = "text"
)

// Valid reports whether v is a known verification type.
func (v VerificationType) Valid() bool {
	switch v {
	case VerificationNone, VerificationPhoto, VerificationText:
		return true
	}
	return false
}

// RequiresData reports whether completing an item of this type requires
// verification evidence.
func (v VerificationType) RequiresData() bool {
	return v == VerificationPhoto || v == VerificationText
}

// ChecklistTemplate is a reusable checklist scoped to a specific
// brand + shift + position combination. At most one active template may
// exist per combination.
type ChecklistTemplate struct {
	ID         uuid.UUID
	BrandID    uuid.UUID
	ShiftID    uuid.UUID
	PositionID uuid.UUID
	Name       string
	IsActive   bool
	Items      []ChecklistTemplateItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChecklistTemplateItem is a single task within a template. Items stay
// mutable while the template is live; mutation never reaches snapshots
// generated earlier.
type ChecklistTemplateItem struct {
	ID               uuid.UUID
	TemplateID       uuid.UUID
	Title            string
	Description      string
	VerificationType VerificationType
	SortOrder        int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActiveItems returns the template's active items ordered by sort order,
// ties broken by id.
func (t *ChecklistTemplate) ActiveItems() []ChecklistTemplateItem {
	items := make([]ChecklistTemplateItem, 0, len(t.Items))
	for _, it := range t.Items {
		if it.IsActive {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return bytes.Compare(items[i].ID[:], items[j].ID[:]) < 0
	})
	return items
}

// ChecklistSnapshot is the immutable point-in-time copy of a template
// embedded in a work assignment. Item identity, text and order never change
// after generation; only per-item completion state does. Template id and
// name are duplicated here on purpose so the snapshot stays auditable after
// the template is renamed or deleted.
type ChecklistSnapshot struct {
	TemplateID   uuid.UUID      `json:"template_id"`
	TemplateName string         `json:"template_name"`
	SnapshotAt   time.Time      `json:"snapshot_at"`
	Items        []SnapshotItem `json:"items"`
}

// SnapshotItem is one checklist entry inside a snapshot.
type SnapshotItem struct {
	TemplateItemID   uuid.UUID        `json:"template_item_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	VerificationType VerificationType `json:"verification_type"`
	SortOrder        int              `json:"sort_order"`
	IsCompleted      bool             `json:"is_completed"`
	CompletedAt      *time.Time       `json:"completed_at"`
	VerificationData *string          `json:"verification_data"`
}

// GenerateSnapshot produces the snapshot for a template at the given time.
// Pure: identical template state yields identical output except SnapshotAt.
// Fails with a ValidationError when the template has no active items, since
// an assignment must have at least one item to track.
func GenerateSnapshot(template *ChecklistTemplate, now time.Time) (*ChecklistSnapshot, error) {
	active := template.ActiveItems()
	if len(active) == 0 {
		return nil, Invalid("checklist template %q has no active items", template.Name)
	}

	items := make([]SnapshotItem, 0, len(active))
	for _, it := range active {
		items = append(items, SnapshotItem{
			TemplateItemID:   it.ID,
			Title:            it.Title,
			Description:      it.Description,
			VerificationType: it.VerificationType,
			SortOrder:        it.SortOrder,
		})
	}

	return &ChecklistSnapshot{
		TemplateID:   template.ID,
		TemplateName: template.Name,
		SnapshotAt:   now.UTC(),
		Items:        items,
	}, nil
}

// Item returns a pointer to the snapshot entry for the given template item
// id, or nil if the snapshot does not contain it.
func (s *ChecklistSnapshot) Item(templateItemID uuid.UUID) *SnapshotItem {
	for i := range s.Items {
		if s.Items[i].TemplateItemID == templateItemID {
			return &s.Items[i]
		}
	}
	return nil
}

// CompletedCount returns the number of completed items.
func (s *ChecklistSnapshot) CompletedCount() int {
	n := 0
	for i := range s.Items {
		if s.Items[i].IsCompleted {
			n++
		}
	}
	return n
}

// ChecklistRepository defines data access for checklist templates and items.
// All lookups are organization-scoped through the owning brand.
type ChecklistRepository interface {
	CreateTemplate(ctx context.Context, template *ChecklistTemplate) error
	GetTemplate(ctx context.Context, orgID, id uuid.UUID) (*ChecklistTemplate, error)
	// ActiveTemplateForCombo resolves the single active template for a
	// brand+shift+position triple, or a NotFoundError.
	ActiveTemplateForCombo(ctx context.Context, orgID, brandID, shiftID, positionID uuid.UUID) (*ChecklistTemplate, error)
	ListTemplates(ctx context.Context, orgID uuid.UUID, brandID *uuid.UUID) ([]*ChecklistTemplate, error)
	UpdateTemplate(ctx context.Context, orgID uuid.UUID, template *ChecklistTemplate) error
	DeactivateTemplate(ctx context.Context, orgID, id uuid.UUID) error
	AddItem(ctx context.Context, orgID uuid.UUID, item *ChecklistTemplateItem) error
	UpdateItem(ctx context.Context, orgID uuid.UUID, item *ChecklistTemplateItem) error
	// ReorderItems atomically reassigns sort positions to match order.
	ReorderItems(ctx context.Context, orgID, templateID uuid.UUID, orderedItemIDs []uuid.UUID) error
}
