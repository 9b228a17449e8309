package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus is the lifecycle state of a work assignment. It is always
// derived from the snapshot's completion set, except for the terminal missed
// override applied by the sweep.
type AssignmentStatus string

const (
	StatusAssigned   AssignmentStatus = "assigned"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusMissed     AssignmentStatus = "missed"
)

// Terminal reports whether no further item edits are allowed.
func (s AssignmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusMissed
}

// WorkAssignment links a user to a brand+shift+position for one work date
// and exclusively owns the checklist snapshot generated at creation time.
type WorkAssignment struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	BrandID        uuid.UUID
	ShiftID        uuid.UUID
	PositionID     uuid.UUID
	UserID         uuid.UUID
	AssignedBy     uuid.UUID
	WorkDate       time.Time // calendar date, midnight UTC
	Status         AssignmentStatus
	Snapshot       *ChecklistSnapshot
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// derivedStatus computes the status implied by the snapshot's completion
// set: assigned iff zero completed, completed iff all, in_progress otherwise.
func (a *WorkAssignment) derivedStatus() AssignmentStatus {
	done := a.Snapshot.CompletedCount()
	switch {
	case done == 0:
		return StatusAssigned
	case done == len(a.Snapshot.Items):
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// CompleteItem marks the snapshot item identified by templateItemID as
// completed at now and recomputes the assignment status.
//
// Re-completing an already completed item is a no-op success: the first
// completed_at wins. Terminal assignments reject edits with a ConflictError;
// unknown item ids surface as NotFoundError. Items whose verification type
// requires evidence fail with a ValidationError when none is supplied.
func (a *WorkAssignment) CompleteItem(templateItemID uuid.UUID, verificationData *string, now time.Time) error {
	if a.Status.Terminal() {
		return Conflict("assignment is %s and can no longer be edited", a.Status)
	}
	item := a.Snapshot.Item(templateItemID)
	if item == nil {
		return NotFound("checklist item")
	}
	if item.IsCompleted {
		return nil
	}
	if item.VerificationType.RequiresData() && (verificationData == nil || *verificationData == "") {
		return Invalid("item requires %s verification data", item.VerificationType)
	}

	ts := now.UTC()
	item.IsCompleted = true
	item.CompletedAt = &ts
	item.VerificationData = verificationData
	a.Status = a.derivedStatus()
	return nil
}

// UncompleteItem clears a snapshot item's completion state. Allowed only
// while the assignment is in progress; clearing the last completed item
// reverts the status to assigned.
func (a *WorkAssignment) UncompleteItem(templateItemID uuid.UUID) error {
	if a.Status != StatusInProgress {
		return Conflict("items can only be uncompleted while the assignment is in progress")
	}
	item := a.Snapshot.Item(templateItemID)
	if item == nil {
		return NotFound("checklist item")
	}
	item.IsCompleted = false
	item.CompletedAt = nil
	item.VerificationData = nil
	a.Status = a.derivedStatus()
	return nil
}

// MarkMissed applies the terminal missed override. Completed assignments
// stay completed.
func (a *WorkAssignment) MarkMissed() error {
	if a.Status == StatusCompleted {
		return Conflict("completed assignments cannot be marked missed")
	}
	a.Status = StatusMissed
	return nil
}

// AssignmentFilter narrows assignment listings. Zero values mean "no filter".
type AssignmentFilter struct {
	BrandID  *uuid.UUID
	UserID   *uuid.UUID
	Status   AssignmentStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}

// AssignmentRepository defines data access for work assignments.
//
// UpdateWithLock runs fn against the current row under a row-level lock in a
// single transaction, persisting the mutated snapshot and status iff fn
// returns nil. Concurrent completion updates to the same assignment
// serialize on that lock; operations on different assignments are
// independent.
type AssignmentRepository interface {
	Create(ctx context.Context, a *WorkAssignment) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*WorkAssignment, error)
	List(ctx context.Context, orgID uuid.UUID, f AssignmentFilter) ([]*WorkAssignment, int, error)
	ListByUser(ctx context.Context, orgID, userID uuid.UUID, f AssignmentFilter) ([]*WorkAssignment, int, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	UpdateWithLock(ctx context.Context, orgID, id uuid.UUID, fn func(a *WorkAssignment) error) (*WorkAssignment, error)
	// MarkMissed flips every non-terminal assignment with a work date before
	// the cutoff to missed, returning the number of rows affected.
	MarkMissed(ctx context.Context, before time.Time) (int64, error)
}
