package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/security/middleware"
	"github.com/scrcorp/taskmanager-server/internal/service"
)

// UserHandler serves role and user management.
type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{userService: userService, logger: logger}
}

type roleResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Level int       `json:"level"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	RoleID    uuid.UUID `json:"role_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponseFrom(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		RoleID:    u.RoleID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type createRoleRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// CreateRole handles POST /api/v1/roles.
func (h *UserHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req createRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	role, err := h.userService.CreateRole(r.Context(), caller, req.Name, req.Level)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, roleResponse{ID: role.ID, Name: role.Name, Level: role.Level})
}

// ListRoles handles GET /api/v1/roles.
func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	roles, err := h.userService.ListRoles(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{ID: role.ID, Name: role.Name, Level: role.Level})
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteRole handles DELETE /api/v1/roles/{id}.
func (h *UserHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "role")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.userService.DeleteRole(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type createUserRequest struct {
	RoleID   string `json:"role_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// CreateUser handles POST /api/v1/users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid role_id"))
		return
	}

	user, err := h.userService.CreateUser(r.Context(), caller, roleID, req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponseFrom(user))
}

// GetUser handles GET /api/v1/users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "user")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

// ListUsers handles GET /api/v1/users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	users, err := h.userService.ListUsers(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponseFrom(u))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateUserRequest struct {
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	RoleID   *string `json:"role_id"`
}

// UpdateUser handles PUT /api/v1/users/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "user")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var roleID *uuid.UUID
	if req.RoleID != nil {
		parsed, err := uuid.Parse(*req.RoleID)
		if err != nil {
			writeError(w, h.logger, domain.Invalid("invalid role_id"))
			return
		}
		roleID = &parsed
	}

	user, err := h.userService.UpdateUser(r.Context(), caller, id, req.Email, req.FullName, roleID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

// DeleteUser handles DELETE /api/v1/users/{id} (soft delete).
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "user")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.userService.DeactivateUser(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
