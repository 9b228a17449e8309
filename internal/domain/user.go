package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role permission levels. Lower numbers carry higher authority.
const (
	RoleLevelOwner          = 1
	RoleLevelGeneralManager = 2
	RoleLevelSupervisor     = 3
	RoleLevelStaff          = 4
)

// Role defines a permission level within an organization. Both name and
// level are unique per organization.
type Role struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Level          int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// User is a system account. Username is unique within an organization, not
// globally.
type User struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	RoleID         uuid.UUID
	Username       string
	Email          string
	FullName       string
	PasswordHash   string // bcrypt, never serialized
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Caller is the authenticated identity attached to every request. RoleLevel
// drives the administrative-override checks on assignment item edits.
type Caller struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	RoleLevel      int
}

// IsManager reports whether the caller's role level grants administrative
// override (supervisor and above).
func (c Caller) IsManager() bool {
	return c.RoleLevel <= RoleLevelSupervisor
}

// RoleRepository defines data access for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Role, error)
	Update(ctx context.Context, orgID uuid.UUID, role *Role) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Role, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, orgID uuid.UUID, username string) (*User, error)
	Update(ctx context.Context, orgID uuid.UUID, user *User) error
	Deactivate(ctx context.Context, orgID, id uuid.UUID) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*User, error)
}
