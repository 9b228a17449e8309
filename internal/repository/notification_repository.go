package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// PostgresNotificationRepository implements domain.NotificationRepository.
type PostgresNotificationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresNotificationRepository creates a new notification repository.
func NewPostgresNotificationRepository(db *sql.DB, logger *slog.Logger) *PostgresNotificationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationRepository{db: db, logger: logger}
}

const notificationColumns = `id, organization_id, user_id, type, message, reference_type, reference_id, is_read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := row.Scan(
		&n.ID, &n.OrganizationID, &n.UserID, &n.Type, &n.Message,
		&n.ReferenceType, &n.ReferenceID, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts a notification for a single user.
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	query := `
		INSERT INTO notifications (id, organization_id, user_id, type, message, reference_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING is_read, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.OrganizationID, n.UserID, n.Type, n.Message, n.ReferenceType, n.ReferenceID,
	).Scan(&n.IsRead, &n.CreatedAt)
	return translateError(err, "notification")
}

// ListByUser returns a user's notifications, newest first.
func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, orgID, userID uuid.UUID, page, perPage int) ([]*domain.Notification, int, error) {
	page, perPage = normalizePage(page, perPage)

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE organization_id = $1 AND user_id = $2`,
		orgID, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, translateError(err, "notification")
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE organization_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, translateError(err, "notification")
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, translateError(err, "notification")
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// ListUnreadSince returns unread notifications past the given cursor,
// oldest first, for incremental delivery to live feeds. The cursor compares
// (created_at, id) so notifications sharing a timestamp are not skipped.
func (r *PostgresNotificationRepository) ListUnreadSince(ctx context.Context, orgID, userID uuid.UUID, after domain.NotificationCursor) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE organization_id = $1 AND user_id = $2 AND is_read = false
		  AND (created_at, id) > ($3, $4)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, userID, after.CreatedAt, after.ID)
	if err != nil {
		return nil, translateError(err, "notification")
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, translateError(err, "notification")
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount returns the number of unread notifications for a user.
func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, orgID, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE organization_id = $1 AND user_id = $2 AND is_read = false`,
		orgID, userID,
	).Scan(&count)
	if err != nil {
		return 0, translateError(err, "notification")
	}
	return count, nil
}

// MarkRead flags one notification as read. Only the recipient's own
// notifications are reachable.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, orgID, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND organization_id = $2 AND user_id = $3`,
		id, orgID, userID)
	if err != nil {
		return translateError(err, "notification")
	}
	return rowsAffected(res, "notification")
}

// MarkAllRead flags every unread notification for a user and reports how
// many were touched.
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, orgID, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE organization_id = $1 AND user_id = $2 AND is_read = false`,
		orgID, userID)
	if err != nil {
		return 0, translateError(err, "notification")
	}
	return res.RowsAffected()
}
