package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Organization is the top-level tenant. Every other entity is scoped under
// exactly one organization and queries must always filter by it.
type Organization struct {
	ID        uuid.UUID
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Brand is a store or business unit under an organization. Shifts, positions,
// checklists and assignments are scoped to a brand.
type Brand struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Address        string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Shift is a time-based work period under a brand (morning, afternoon, night).
type Shift struct {
	ID        uuid.UUID
	BrandID   uuid.UUID
	Name      string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Position is a job role or station under a brand (grill, counter, cleaning).
type Position struct {
	ID        uuid.UUID
	BrandID   uuid.UUID
	Name      string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationRepository defines data access for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Organization, error)
}

// BrandRepository defines data access for brands. All lookups are
// organization-scoped; a brand belonging to another organization behaves as
// if it does not exist.
type BrandRepository interface {
	Create(ctx context.Context, brand *Brand) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Brand, error)
	Update(ctx context.Context, orgID uuid.UUID, brand *Brand) error
	Deactivate(ctx context.Context, orgID, id uuid.UUID) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Brand, error)
}

// ShiftRepository defines data access for shifts within a brand.
type ShiftRepository interface {
	Create(ctx context.Context, shift *Shift) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Shift, error)
	Update(ctx context.Context, orgID uuid.UUID, shift *Shift) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	ListByBrand(ctx context.Context, orgID, brandID uuid.UUID) ([]*Shift, error)
}

// PositionRepository defines data access for positions within a brand.
type PositionRepository interface {
	Create(ctx context.Context, position *Position) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Position, error)
	Update(ctx context.Context, orgID uuid.UUID, position *Position) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	ListByBrand(ctx context.Context, orgID, brandID uuid.UUID) ([]*Position, error)
}
