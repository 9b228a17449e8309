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

// NotificationHandler serves the in-app notification inbox.
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notificationService *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

type notificationResponse struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

func notificationResponseFrom(n *domain.Notification) notificationResponse {
	return notificationResponse{
		ID:            n.ID,
		Type:          n.Type,
		Message:       n.Message,
		ReferenceType: n.ReferenceType,
		ReferenceID:   n.ReferenceID,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
	}
}

// List handles GET /api/v1/notifications with pagination, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	page, perPage := pagination(r)

	notifications, total, err := h.notificationService.List(r.Context(), caller, page, perPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponseFrom(n))
	}
	writeJSON(w, http.StatusOK, listResponse{Data: out, Total: total, Page: page, PerPage: perPage})
}

type unreadCountResponse struct {
	Count int `json:"count"`
}

// UnreadCount handles GET /api/v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	count, err := h.notificationService.UnreadCount(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, unreadCountResponse{Count: count})
}

// MarkRead handles POST /api/v1/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "notification")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type markAllReadResponse struct {
	Marked int64 `json:"marked"`
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	marked, err := h.notificationService.MarkAllRead(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, markAllReadResponse{Marked: marked})
}
