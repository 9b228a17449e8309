package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/security/auth"
)

func seedAccount(t *testing.T, users *memUserRepo, roles *memRoleRepo, orgID uuid.UUID, username, password string, level int) *domain.User {
	t.Helper()
	role := &domain.Role{OrganizationID: orgID, Name: username + "-role", Level: level}
	if err := roles.Create(context.Background(), role); err != nil {
		t.Fatalf("seed role: %v", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		OrganizationID: orgID,
		RoleID:         role.ID,
		Username:       username,
		PasswordHash:   hash,
		IsActive:       true,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	roles := newMemRoleRepo()
	orgID := uuid.New()
	seedAccount(t, users, roles, orgID, "alice", "Password123", domain.RoleLevelOwner)

	s := NewAuthService(users, roles, auth.NewTokenManager("secret", "test"), nil)

	lr, err := s.Login(ctx, orgID, "alice", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" || lr.TokenType != "Bearer" {
		t.Fatalf("expected bearer token, got %+v", lr)
	}
	if lr.RoleLevel != domain.RoleLevelOwner {
		t.Fatalf("expected role level %d, got %d", domain.RoleLevelOwner, lr.RoleLevel)
	}

	if _, err := s.Login(ctx, orgID, "alice", "wrong"); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden on wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, orgID, "nobody", "Password123"); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden on unknown user, got %v", err)
	}
	// Same username in another org is a different credential space.
	if _, err := s.Login(ctx, uuid.New(), "alice", "Password123"); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for other org, got %v", err)
	}
}

func TestLoginDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	roles := newMemRoleRepo()
	orgID := uuid.New()
	u := seedAccount(t, users, roles, orgID, "bob", "Password123", domain.RoleLevelStaff)
	u.IsActive = false

	s := NewAuthService(users, roles, auth.NewTokenManager("secret", "test"), nil)
	if _, err := s.Login(ctx, orgID, "bob", "Password123"); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for deactivated user, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	roles := newMemRoleRepo()
	orgID := uuid.New()
	u := seedAccount(t, users, roles, orgID, "carol", "Password123", domain.RoleLevelSupervisor)

	tm := auth.NewTokenManager("secret", "test")
	s := NewAuthService(users, roles, tm, nil)
	lr, err := s.Login(ctx, orgID, "carol", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := tm.ValidateToken(lr.Token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	caller, err := claims.Caller()
	if err != nil {
		t.Fatalf("caller from claims: %v", err)
	}
	if caller.UserID != u.ID || caller.OrganizationID != orgID {
		t.Fatalf("claims identity mismatch: %+v", caller)
	}
	if !caller.IsManager() {
		t.Fatalf("supervisor should have manager override")
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	roles := newMemRoleRepo()
	orgID := uuid.New()
	u := seedAccount(t, users, roles, orgID, "dave", "OldPass123", domain.RoleLevelStaff)
	caller := domain.Caller{UserID: u.ID, OrganizationID: orgID, RoleLevel: domain.RoleLevelStaff}

	s := NewAuthService(users, roles, auth.NewTokenManager("secret", "test"), nil)

	if err := s.ChangePassword(ctx, caller, "bad", "NewPass123"); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden on wrong old password, got %v", err)
	}
	if err := s.ChangePassword(ctx, caller, "OldPass123", "short"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error on short password, got %v", err)
	}
	if err := s.ChangePassword(ctx, caller, "OldPass123", "NewPass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := s.Login(ctx, orgID, "dave", "OldPass123"); err == nil {
		t.Fatalf("expected old password to fail after change")
	}
	if _, err := s.Login(ctx, orgID, "dave", "NewPass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
