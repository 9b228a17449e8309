package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// OrganizationService manages tenants and the brand/shift/position directory
// beneath them. Directory mutations require a manager-level caller; shifts and
// positions always resolve their brand first so cross-organization ids surface
// as NotFoundError.
type OrganizationService struct {
	orgRepo      domain.OrganizationRepository
	brandRepo    domain.BrandRepository
	shiftRepo    domain.ShiftRepository
	positionRepo domain.PositionRepository
	logger       *slog.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	orgRepo domain.OrganizationRepository,
	brandRepo domain.BrandRepository,
	shiftRepo domain.ShiftRepository,
	positionRepo domain.PositionRepository,
	logger *slog.Logger,
) *OrganizationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &OrganizationService{
		orgRepo:      orgRepo,
		brandRepo:    brandRepo,
		shiftRepo:    shiftRepo,
		positionRepo: positionRepo,
		logger:       logger,
	}
}

// GetOrganization returns the caller's own organization.
func (s *OrganizationService) GetOrganization(ctx context.Context, caller domain.Caller) (*domain.Organization, error) {
	return s.orgRepo.GetByID(ctx, caller.OrganizationID)
}

// UpdateOrganization renames the caller's organization. Owner only.
func (s *OrganizationService) UpdateOrganization(ctx context.Context, caller domain.Caller, name string) (*domain.Organization, error) {
	if caller.RoleLevel != domain.RoleLevelOwner {
		return nil, domain.Forbidden("only the owner can update the organization")
	}
	if name == "" {
		return nil, domain.Invalid("organization name is required")
	}

	org, err := s.orgRepo.GetByID(ctx, caller.OrganizationID)
	if err != nil {
		return nil, err
	}
	org.Name = name
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// CreateBrand adds a store or business unit under the organization.
func (s *OrganizationService) CreateBrand(ctx context.Context, caller domain.Caller, name, address string) (*domain.Brand, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if name == "" {
		return nil, domain.Invalid("brand name is required")
	}

	brand := &domain.Brand{
		OrganizationID: caller.OrganizationID,
		Name:           name,
		Address:        address,
		IsActive:       true,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, err
	}

	s.logger.Info("brand created",
		slog.String("brand_id", brand.ID.String()),
		slog.String("organization_id", caller.OrganizationID.String()),
	)
	return brand, nil
}

// GetBrand resolves a brand within the caller's organization.
func (s *OrganizationService) GetBrand(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Brand, error) {
	return s.brandRepo.GetByID(ctx, caller.OrganizationID, id)
}

// ListBrands lists the organization's brands.
func (s *OrganizationService) ListBrands(ctx context.Context, caller domain.Caller) ([]*domain.Brand, error) {
	return s.brandRepo.ListByOrganization(ctx, caller.OrganizationID)
}

// UpdateBrand renames a brand or changes its address.
func (s *OrganizationService) UpdateBrand(ctx context.Context, caller domain.Caller, id uuid.UUID, name, address string) (*domain.Brand, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}

	brand, err := s.brandRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		brand.Name = name
	}
	if address != "" {
		brand.Address = address
	}
	if err := s.brandRepo.Update(ctx, caller.OrganizationID, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// DeactivateBrand soft-deletes a brand. Existing assignments and snapshots
// under it are untouched.
func (s *OrganizationService) DeactivateBrand(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}
	return s.brandRepo.Deactivate(ctx, caller.OrganizationID, id)
}

// CreateShift adds a work period under a brand.
func (s *OrganizationService) CreateShift(ctx context.Context, caller domain.Caller, brandID uuid.UUID, name string, sortOrder int) (*domain.Shift, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if name == "" {
		return nil, domain.Invalid("shift name is required")
	}
	if _, err := s.brandRepo.GetByID(ctx, caller.OrganizationID, brandID); err != nil {
		return nil, err
	}

	shift := &domain.Shift{BrandID: brandID, Name: name, SortOrder: sortOrder}
	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// ListShifts lists a brand's shifts in sort order.
func (s *OrganizationService) ListShifts(ctx context.Context, caller domain.Caller, brandID uuid.UUID) ([]*domain.Shift, error) {
	return s.shiftRepo.ListByBrand(ctx, caller.OrganizationID, brandID)
}

// UpdateShift renames or reorders a shift.
func (s *OrganizationService) UpdateShift(ctx context.Context, caller domain.Caller, id uuid.UUID, name string, sortOrder *int) (*domain.Shift, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}

	shift, err := s.shiftRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		shift.Name = name
	}
	if sortOrder != nil {
		shift.SortOrder = *sortOrder
	}
	if err := s.shiftRepo.Update(ctx, caller.OrganizationID, shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// DeleteShift removes a shift.
func (s *OrganizationService) DeleteShift(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}
	return s.shiftRepo.Delete(ctx, caller.OrganizationID, id)
}

// CreatePosition adds a job station under a brand.
func (s *OrganizationService) CreatePosition(ctx context.Context, caller domain.Caller, brandID uuid.UUID, name string, sortOrder int) (*domain.Position, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if name == "" {
		return nil, domain.Invalid("position name is required")
	}
	if _, err := s.brandRepo.GetByID(ctx, caller.OrganizationID, brandID); err != nil {
		return nil, err
	}

	position := &domain.Position{BrandID: brandID, Name: name, SortOrder: sortOrder}
	if err := s.positionRepo.Create(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

// ListPositions lists a brand's positions in sort order.
func (s *OrganizationService) ListPositions(ctx context.Context, caller domain.Caller, brandID uuid.UUID) ([]*domain.Position, error) {
	return s.positionRepo.ListByBrand(ctx, caller.OrganizationID, brandID)
}

// UpdatePosition renames or reorders a position.
func (s *OrganizationService) UpdatePosition(ctx context.Context, caller domain.Caller, id uuid.UUID, name string, sortOrder *int) (*domain.Position, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}

	position, err := s.positionRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		position.Name = name
	}
	if sortOrder != nil {
		position.SortOrder = *sortOrder
	}
	if err := s.positionRepo.Update(ctx, caller.OrganizationID, position); err != nil {
		return nil, err
	}
	return position, nil
}

// DeletePosition removes a position.
func (s *OrganizationService) DeletePosition(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}
	return s.positionRepo.Delete(ctx, caller.OrganizationID, id)
}
