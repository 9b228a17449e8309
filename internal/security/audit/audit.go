package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Logger records security-relevant actions as structured log lines. Entries
// go to the application log stream; shipping them to a dedicated sink is a
// deployment concern.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, orgID, userID uuid.UUID, action, resource, resourceID, status string) {
	al.logger.InfoContext(ctx, "audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("organization_id", orgID.String()),
		slog.String("user_id", userID.String()),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, orgID, userID uuid.UUID, status string) {
	al.LogAction(ctx, orgID, userID, "login", "session", "", status)
}

func (al *Logger) LogMutation(ctx context.Context, orgID, userID uuid.UUID, method, path string) {
	al.LogAction(ctx, orgID, userID, method, "endpoint", path, "initiated")
}

func (al *Logger) LogDenied(ctx context.Context, orgID, userID uuid.UUID, reason string) {
	al.LogAction(ctx, orgID, userID, "access_denied", "api", "", reason)
}
