package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// UserService manages roles and accounts within an organization, plus the
// unauthenticated organization signup flow that bootstraps both.
type UserService struct {
	orgRepo  domain.OrganizationRepository
	roleRepo domain.RoleRepository
	userRepo domain.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user management service
func NewUserService(
	orgRepo domain.OrganizationRepository,
	roleRepo domain.RoleRepository,
	userRepo domain.UserRepository,
	logger *slog.Logger,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		orgRepo:  orgRepo,
		roleRepo: roleRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterResult is the signup response.
type RegisterResult struct {
	Organization *domain.Organization `json:"organization"`
	Owner        *domain.User         `json:"owner"`
}

// defaultRoles is the hierarchy seeded into every new organization.
var defaultRoles = []struct {
	Name  string
	Level int
}{
	{"Owner", domain.RoleLevelOwner},
	{"General Manager", domain.RoleLevelGeneralManager},
	{"Supervisor", domain.RoleLevelSupervisor},
	{"Staff", domain.RoleLevelStaff},
}

// RegisterOrganization bootstraps a new tenant: the organization, the default
// role hierarchy, and the owner account.
func (s *UserService) RegisterOrganization(ctx context.Context, orgName, username, email, fullName, password string) (*RegisterResult, error) {
	if orgName == "" || username == "" {
		return nil, domain.Invalid("organization name and username are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	org := &domain.Organization{Name: orgName, IsActive: true}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, err
	}

	var ownerRoleID uuid.UUID
	for _, r := range defaultRoles {
		role := &domain.Role{OrganizationID: org.ID, Name: r.Name, Level: r.Level}
		if err := s.roleRepo.Create(ctx, role); err != nil {
			return nil, err
		}
		if r.Level == domain.RoleLevelOwner {
			ownerRoleID = role.ID
		}
	}

	owner := &domain.User{
		OrganizationID: org.ID,
		RoleID:         ownerRoleID,
		Username:       username,
		Email:          email,
		FullName:       fullName,
		PasswordHash:   hash,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, owner); err != nil {
		return nil, err
	}

	s.logger.Info("organization registered",
		slog.String("organization_id", org.ID.String()),
		slog.String("owner_id", owner.ID.String()),
	)
	return &RegisterResult{Organization: org, Owner: owner}, nil
}

// CreateRole adds a custom role. General manager and above.
func (s *UserService) CreateRole(ctx context.Context, caller domain.Caller, name string, level int) (*domain.Role, error) {
	if caller.RoleLevel > domain.RoleLevelGeneralManager {
		return nil, domain.Forbidden("general manager role required")
	}
	if name == "" {
		return nil, domain.Invalid("role name is required")
	}
	if level < domain.RoleLevelOwner || level > domain.RoleLevelStaff {
		return nil, domain.Invalid("role level must be between %d and %d", domain.RoleLevelOwner, domain.RoleLevelStaff)
	}
	if level <= caller.RoleLevel {
		return nil, domain.Forbidden("cannot create a role at or above your own level")
	}

	role := &domain.Role{OrganizationID: caller.OrganizationID, Name: name, Level: level}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// ListRoles lists the organization's roles.
func (s *UserService) ListRoles(ctx context.Context, caller domain.Caller) ([]*domain.Role, error) {
	return s.roleRepo.ListByOrganization(ctx, caller.OrganizationID)
}

// DeleteRole removes a role. Fails with a ValidationError while users still
// hold it, via the foreign key.
func (s *UserService) DeleteRole(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if caller.RoleLevel > domain.RoleLevelGeneralManager {
		return domain.Forbidden("general manager role required")
	}
	return s.roleRepo.Delete(ctx, caller.OrganizationID, id)
}

// CreateUser adds an account to the organization. The new account's role must
// sit below the caller's own level.
func (s *UserService) CreateUser(ctx context.Context, caller domain.Caller, roleID uuid.UUID, username, email, fullName, password string) (*domain.User, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if username == "" {
		return nil, domain.Invalid("username is required")
	}

	role, err := s.roleRepo.GetByID(ctx, caller.OrganizationID, roleID)
	if err != nil {
		return nil, err
	}
	if role.Level <= caller.RoleLevel {
		return nil, domain.Forbidden("cannot create a user at or above your own level")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		OrganizationID: caller.OrganizationID,
		RoleID:         role.ID,
		Username:       username,
		Email:          email,
		FullName:       fullName,
		PasswordHash:   hash,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role_id", role.ID.String()),
	)
	return user, nil
}

// GetUser resolves an account within the caller's organization.
func (s *UserService) GetUser(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, caller.OrganizationID, id)
}

// ListUsers lists the organization's accounts.
func (s *UserService) ListUsers(ctx context.Context, caller domain.Caller) ([]*domain.User, error) {
	return s.userRepo.ListByOrganization(ctx, caller.OrganizationID)
}

// UpdateUser edits an account's profile or role. Managers only; role changes
// follow the same below-own-level rule as creation.
func (s *UserService) UpdateUser(ctx context.Context, caller domain.Caller, id uuid.UUID, email, fullName string, roleID *uuid.UUID) (*domain.User, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}

	user, err := s.userRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if email != "" {
		user.Email = email
	}
	if fullName != "" {
		user.FullName = fullName
	}
	if roleID != nil {
		role, err := s.roleRepo.GetByID(ctx, caller.OrganizationID, *roleID)
		if err != nil {
			return nil, err
		}
		if role.Level <= caller.RoleLevel {
			return nil, domain.Forbidden("cannot assign a role at or above your own level")
		}
		user.RoleID = role.ID
	}
	if err := s.userRepo.Update(ctx, caller.OrganizationID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser soft-deletes an account. The account can no longer log in;
// its historical assignments are untouched.
func (s *UserService) DeactivateUser(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}
	if id == caller.UserID {
		return domain.Invalid("cannot deactivate your own account")
	}
	return s.userRepo.Deactivate(ctx, caller.OrganizationID, id)
}
