package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// ChecklistService manages checklist templates and their items. At most one
// active template exists per brand+shift+position combination; the database
// enforces that with a partial unique index and the service surfaces the
// violation as a ConflictError.
type ChecklistService struct {
	checklistRepo domain.ChecklistRepository
	brandRepo     domain.BrandRepository
	shiftRepo     domain.ShiftRepository
	positionRepo  domain.PositionRepository
	logger        *slog.Logger
}

// NewChecklistService creates a new checklist service
func NewChecklistService(
	checklistRepo domain.ChecklistRepository,
	brandRepo domain.BrandRepository,
	shiftRepo domain.ShiftRepository,
	positionRepo domain.PositionRepository,
	logger *slog.Logger,
) *ChecklistService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChecklistService{
		checklistRepo: checklistRepo,
		brandRepo:     brandRepo,
		shiftRepo:     shiftRepo,
		positionRepo:  positionRepo,
		logger:        logger,
	}
}

// NewTemplateItem is the input for one item at template creation.
type NewTemplateItem struct {
	Title            string
	Description      string
	VerificationType domain.VerificationType
	SortOrder        *int // nil defaults to declaration order
}

// ItemPatch carries optional updates for a template item. Nil fields are
// left unchanged.
type ItemPatch struct {
	Title            *string
	Description      *string
	VerificationType *domain.VerificationType
	SortOrder        *int
	IsActive         *bool
}

// resolveCombo verifies the brand belongs to the caller's organization and
// that shift and position belong to that brand.
func (s *ChecklistService) resolveCombo(ctx context.Context, caller domain.Caller, brandID, shiftID, positionID uuid.UUID) error {
	if _, err := s.brandRepo.GetByID(ctx, caller.OrganizationID, brandID); err != nil {
		return err
	}
	shift, err := s.shiftRepo.GetByID(ctx, caller.OrganizationID, shiftID)
	if err != nil {
		return err
	}
	if shift.BrandID != brandID {
		return domain.Invalid("shift does not belong to the given brand")
	}
	position, err := s.positionRepo.GetByID(ctx, caller.OrganizationID, positionID)
	if err != nil {
		return err
	}
	if position.BrandID != brandID {
		return domain.Invalid("position does not belong to the given brand")
	}
	return nil
}

// CreateTemplate creates a template with its initial items. Fails with a
// ConflictError when an active template already exists for the combination.
func (s *ChecklistService) CreateTemplate(ctx context.Context, caller domain.Caller, brandID, shiftID, positionID uuid.UUID, name string, items []NewTemplateItem) (*domain.ChecklistTemplate, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if name == "" {
		return nil, domain.Invalid("template name is required")
	}
	if err := s.resolveCombo(ctx, caller, brandID, shiftID, positionID); err != nil {
		return nil, err
	}

	template := &domain.ChecklistTemplate{
		BrandID:    brandID,
		ShiftID:    shiftID,
		PositionID: positionID,
		Name:       name,
		IsActive:   true,
	}
	for i, in := range items {
		if in.Title == "" {
			return nil, domain.Invalid("item %d: title is required", i+1)
		}
		vt := in.VerificationType
		if vt == "" {
			vt = domain.VerificationNone
		}
		if !vt.Valid() {
			return nil, domain.Invalid("item %d: unknown verification type %q", i+1, in.VerificationType)
		}
		sortOrder := i + 1
		if in.SortOrder != nil {
			sortOrder = *in.SortOrder
		}
		template.Items = append(template.Items, domain.ChecklistTemplateItem{
			Title:            in.Title,
			Description:      in.Description,
			VerificationType: vt,
			SortOrder:        sortOrder,
			IsActive:         true,
		})
	}

	if err := s.checklistRepo.CreateTemplate(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("checklist template created",
		slog.String("template_id", template.ID.String()),
		slog.String("brand_id", brandID.String()),
		slog.Int("items", len(template.Items)),
	)
	return template, nil
}

// GetTemplate resolves a template within the caller's organization.
func (s *ChecklistService) GetTemplate(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.ChecklistTemplate, error) {
	return s.checklistRepo.GetTemplate(ctx, caller.OrganizationID, id)
}

// ListTemplates lists templates, optionally filtered by brand.
func (s *ChecklistService) ListTemplates(ctx context.Context, caller domain.Caller, brandID *uuid.UUID) ([]*domain.ChecklistTemplate, error) {
	return s.checklistRepo.ListTemplates(ctx, caller.OrganizationID, brandID)
}

// RenameTemplate changes a template's name. Snapshots keep the name they
// were generated with.
func (s *ChecklistService) RenameTemplate(ctx context.Context, caller domain.Caller, id uuid.UUID, name string) (*domain.ChecklistTemplate, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if name == "" {
		return nil, domain.Invalid("template name is required")
	}

	template, err := s.checklistRepo.GetTemplate(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	template.Name = name
	if err := s.checklistRepo.UpdateTemplate(ctx, caller.OrganizationID, template); err != nil {
		return nil, err
	}
	return template, nil
}

// DeactivateTemplate soft-deletes a template. Existing snapshots are not
// cascaded into; new assignments for the combination will fail until a new
// template is created.
func (s *ChecklistService) DeactivateTemplate(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}
	if err := s.checklistRepo.DeactivateTemplate(ctx, caller.OrganizationID, id); err != nil {
		return err
	}
	s.logger.Info("checklist template deactivated", slog.String("template_id", id.String()))
	return nil
}

// AddItem appends an item to a template. Sort order defaults to the end of
// the current list.
func (s *ChecklistService) AddItem(ctx context.Context, caller domain.Caller, templateID uuid.UUID, in NewTemplateItem) (*domain.ChecklistTemplateItem, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if in.Title == "" {
		return nil, domain.Invalid("item title is required")
	}
	vt := in.VerificationType
	if vt == "" {
		vt = domain.VerificationNone
	}
	if !vt.Valid() {
		return nil, domain.Invalid("unknown verification type %q", in.VerificationType)
	}

	template, err := s.checklistRepo.GetTemplate(ctx, caller.OrganizationID, templateID)
	if err != nil {
		return nil, err
	}

	sortOrder := 0
	for _, it := range template.Items {
		if it.SortOrder > sortOrder {
			sortOrder = it.SortOrder
		}
	}
	sortOrder++
	if in.SortOrder != nil {
		sortOrder = *in.SortOrder
	}

	item := &domain.ChecklistTemplateItem{
		TemplateID:       templateID,
		Title:            in.Title,
		Description:      in.Description,
		VerificationType: vt,
		SortOrder:        sortOrder,
		IsActive:         true,
	}
	if err := s.checklistRepo.AddItem(ctx, caller.OrganizationID, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem applies a patch to a template item. Snapshots generated earlier
// are unaffected.
func (s *ChecklistService) UpdateItem(ctx context.Context, caller domain.Caller, templateID, itemID uuid.UUID, patch ItemPatch) (*domain.ChecklistTemplateItem, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}

	template, err := s.checklistRepo.GetTemplate(ctx, caller.OrganizationID, templateID)
	if err != nil {
		return nil, err
	}
	var item *domain.ChecklistTemplateItem
	for i := range template.Items {
		if template.Items[i].ID == itemID {
			item = &template.Items[i]
			break
		}
	}
	if item == nil {
		return nil, domain.NotFound("checklist item")
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, domain.Invalid("item title is required")
		}
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.VerificationType != nil {
		if !patch.VerificationType.Valid() {
			return nil, domain.Invalid("unknown verification type %q", *patch.VerificationType)
		}
		item.VerificationType = *patch.VerificationType
	}
	if patch.SortOrder != nil {
		item.SortOrder = *patch.SortOrder
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}

	if err := s.checklistRepo.UpdateItem(ctx, caller.OrganizationID, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ReorderItems atomically reassigns the template's item order. The supplied
// id set must exactly match the template's current active items; otherwise a
// ValidationError is returned and the existing order stays untouched.
func (s *ChecklistService) ReorderItems(ctx context.Context, caller domain.Caller, templateID uuid.UUID, orderedItemIDs []uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}

	template, err := s.checklistRepo.GetTemplate(ctx, caller.OrganizationID, templateID)
	if err != nil {
		return err
	}

	active := template.ActiveItems()
	if len(orderedItemIDs) != len(active) {
		return domain.Invalid("reorder must list all %d active items, got %d", len(active), len(orderedItemIDs))
	}
	want := make(map[uuid.UUID]bool, len(active))
	for _, it := range active {
		want[it.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(orderedItemIDs))
	for _, id := range orderedItemIDs {
		if !want[id] {
			return domain.Invalid("item %s is not an active item of this template", id)
		}
		if seen[id] {
			return domain.Invalid("item %s appears more than once", id)
		}
		seen[id] = true
	}

	return s.checklistRepo.ReorderItems(ctx, caller.OrganizationID, templateID, orderedItemIDs)
}
