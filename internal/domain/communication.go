package domain

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStatus tracks ad-hoc task progress.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// AdditionalTask is an ad-hoc piece of work outside the scheduled checklist
// flow, assigned directly to a user.
type AdditionalTask struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	BrandID        uuid.UUID
	UserID         uuid.UUID
	AssignedBy     uuid.UUID
	Title          string
	Description    string
	DueDate        *time.Time
	Status         TaskStatus
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Announcement is a post visible to an organization, optionally narrowed to
// one brand.
type Announcement struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	BrandID        *uuid.UUID // nil means org-wide
	AuthorID       uuid.UUID
	Title          string
	Body           string
	CreatedAt      time.Time
}

// Notification types and reference types. A notification points back at
// the entity that triggered it.
const (
	NotifyWorkAssigned   = "work_assigned"
	NotifyTaskAssigned   = "additional_task"
	NotifyAnnouncement   = "announcement"
	NotifyTaskCompleted  = "task_completed"
	RefWorkAssignment    = "work_assignment"
	RefAdditionalTask    = "additional_task"
	RefAnnouncementEntry = "announcement"
)

// Notification is an in-app message delivered to a single user.
type Notification struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Type           string
	Message        string
	ReferenceType  string
	ReferenceID    uuid.UUID
	IsRead         bool
	CreatedAt      time.Time
}

// NotificationCursor marks a position in a user's notification stream.
// Notifications are ordered by (created_at, id) so rows sharing a timestamp
// still have a total order. The zero cursor precedes every notification.
type NotificationCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Precedes reports whether the cursor sorts strictly before n.
func (c NotificationCursor) Precedes(n *Notification) bool {
	if !n.CreatedAt.Equal(c.CreatedAt) {
		return n.CreatedAt.After(c.CreatedAt)
	}
	return bytes.Compare(n.ID[:], c.ID[:]) > 0
}

// CursorAfter returns the cursor positioned at n.
func CursorAfter(n *Notification) NotificationCursor {
	return NotificationCursor{CreatedAt: n.CreatedAt, ID: n.ID}
}

// TaskRepository defines data access for ad-hoc tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *AdditionalTask) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*AdditionalTask, error)
	Update(ctx context.Context, orgID uuid.UUID, task *AdditionalTask) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, userID *uuid.UUID, status TaskStatus) ([]*AdditionalTask, error)
}

// AnnouncementRepository defines data access for announcements.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *Announcement) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Announcement, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, brandID *uuid.UUID, page, perPage int) ([]*Announcement, int, error)
}

// NotificationRepository defines data access for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, orgID, userID uuid.UUID, page, perPage int) ([]*Notification, int, error)
	ListUnreadSince(ctx context.Context, orgID, userID uuid.UUID, after NotificationCursor) ([]*Notification, error)
	UnreadCount(ctx context.Context, orgID, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, orgID, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, orgID, userID uuid.UUID) (int64, error)
}
