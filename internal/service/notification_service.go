package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/observability/metrics"
)

// NotificationService emits and serves in-app notifications. Emission is
// best effort: a failed insert is logged and counted but never propagated,
// so notification trouble cannot roll back the operation that triggered it.
type NotificationService struct {
	notificationRepo domain.NotificationRepository
	logger           *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo domain.NotificationRepository, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Notify records a notification for a user. Never returns an error.
func (s *NotificationService) Notify(ctx context.Context, orgID, userID uuid.UUID, notificationType, referenceType string, referenceID uuid.UUID, message string) {
	n := &domain.Notification{
		OrganizationID: orgID,
		UserID:         userID,
		Type:           notificationType,
		ReferenceType:  referenceType,
		ReferenceID:    referenceID,
		Message:        message,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		metrics.ObserveNotification(notificationType, "error")
		s.logger.Warn("failed to emit notification",
			slog.String("type", notificationType),
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.ObserveNotification(notificationType, "ok")
}

// List returns the caller's own notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller domain.Caller, page, perPage int) ([]*domain.Notification, int, error) {
	return s.notificationRepo.ListByUser(ctx, caller.OrganizationID, caller.UserID, page, perPage)
}

// UnreadSince returns the caller's unread notifications past the given
// cursor, oldest first. Used by the live feed.
func (s *NotificationService) UnreadSince(ctx context.Context, caller domain.Caller, after domain.NotificationCursor) ([]*domain.Notification, error) {
	return s.notificationRepo.ListUnreadSince(ctx, caller.OrganizationID, caller.UserID, after)
}

// UnreadCount returns how many of the caller's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, caller domain.Caller) (int, error) {
	return s.notificationRepo.UnreadCount(ctx, caller.OrganizationID, caller.UserID)
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, caller.OrganizationID, caller.UserID, id)
}

// MarkAllRead flags all of the caller's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller domain.Caller) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, caller.OrganizationID, caller.UserID)
}
