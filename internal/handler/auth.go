package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/security/audit"
	"github.com/scrcorp/taskmanager-server/internal/security/middleware"
	"github.com/scrcorp/taskmanager-server/internal/service"
)

// AuthHandler serves login, registration and session introspection.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		userService: userService,
		auditLog:    auditLog,
		logger:      logger,
	}
}

type loginRequest struct {
	OrganizationID string `json:"organization_id"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid organization_id"))
		return
	}

	result, err := h.authService.Login(r.Context(), orgID, req.Username, req.Password)
	if err != nil {
		h.auditLog.LogLogin(r.Context(), orgID, uuid.Nil, "denied")
		writeError(w, h.logger, err)
		return
	}

	h.auditLog.LogLogin(r.Context(), orgID, result.UserID, "success")
	writeJSON(w, http.StatusOK, result)
}

type registerRequest struct {
	OrganizationName string `json:"organization_name"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	Password         string `json:"password"`
}

type registerResponse struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Username       string    `json:"username"`
}

// Register handles POST /api/v1/auth/register. It bootstraps a new
// organization with the default role set and an owner account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.userService.RegisterOrganization(r.Context(), req.OrganizationName, req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		OrganizationID: result.Organization.ID,
		OwnerID:        result.Owner.ID,
		Username:       result.Owner.Username,
	})
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	user, err := h.authService.Me(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles POST /api/v1/auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), caller, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
