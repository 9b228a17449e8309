package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

// AuthService handles authentication operations
type AuthService struct {
	userRepo domain.UserRepository
	roleRepo domain.RoleRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginResult represents login response
type LoginResult struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	RoleLevel int       `json:"role_level"`
	Token     string    `json:"token"`
	ExpiresIn int       `json:"expires_in"` // seconds
	TokenType string    `json:"token_type"`
}

// Login authenticates a user within an organization and returns a JWT token.
// Usernames are unique per organization, so the organization id is part of
// the credential.
func (s *AuthService) Login(ctx context.Context, orgID uuid.UUID, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.Invalid("username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, orgID, username)
	if err != nil {
		s.logger.Info("login attempt with unknown username", slog.String("username", username))
		return nil, domain.Forbidden("invalid credentials")
	}
	if !user.IsActive {
		return nil, domain.Forbidden("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("username", username))
		return nil, domain.Forbidden("invalid credentials")
	}

	role, err := s.roleRepo.GetByID(ctx, user.OrganizationID, user.RoleID)
	if err != nil {
		s.logger.Error("failed to resolve role at login",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil, domain.Forbidden("invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user, role.Level, tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, domain.Invalid("failed to generate token")
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID.String()),
		slog.String("organization_id", user.OrganizationID.String()),
	)

	return &LoginResult{
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		RoleLevel: role.Level,
		Token:     token,
		ExpiresIn: int(tokenTTL.Seconds()),
		TokenType: "Bearer",
	}, nil
}

// Me resolves the caller's own account.
func (s *AuthService) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, caller.OrganizationID, caller.UserID)
}

// ChangePassword changes the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, caller domain.Caller, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Invalid("new password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByID(ctx, caller.OrganizationID, caller.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.Forbidden("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return domain.Invalid("failed to change password")
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, caller.OrganizationID, user); err != nil {
		s.logger.Error("failed to update password", slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("user changed password", slog.String("user_id", caller.UserID.String()))
	return nil
}

// HashPassword produces a bcrypt hash for storage. Used by the user
// management service when creating accounts.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", domain.Invalid("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
