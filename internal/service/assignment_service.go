package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/observability/metrics"
)

// Notifier emits in-app notifications. Implementations never fail the
// calling operation.
type Notifier interface {
	Notify(ctx context.Context, orgID, userID uuid.UUID, notificationType, referenceType string, referenceID uuid.UUID, message string)
}

// AssignmentService owns the work assignment lifecycle: creation with an
// embedded snapshot of the active checklist template, item completion under a
// row lock, and the derived status transitions.
type AssignmentService struct {
	assignmentRepo domain.AssignmentRepository
	checklistRepo  domain.ChecklistRepository
	brandRepo      domain.BrandRepository
	shiftRepo      domain.ShiftRepository
	positionRepo   domain.PositionRepository
	userRepo       domain.UserRepository
	notifier       Notifier
	logger         *slog.Logger
	now            func() time.Time
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	assignmentRepo domain.AssignmentRepository,
	checklistRepo domain.ChecklistRepository,
	brandRepo domain.BrandRepository,
	shiftRepo domain.ShiftRepository,
	positionRepo domain.PositionRepository,
	userRepo domain.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *AssignmentService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		checklistRepo:  checklistRepo,
		brandRepo:      brandRepo,
		shiftRepo:      shiftRepo,
		positionRepo:   positionRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

// Create schedules a user for a brand+shift+position on a work date,
// snapshotting the combination's active checklist template into the new
// assignment. The snapshot is a column of the assignment row, so assignment
// and snapshot commit atomically. One assignment per user per combination
// per date; duplicates surface as ConflictError.
func (s *AssignmentService) Create(ctx context.Context, caller domain.Caller, brandID, shiftID, positionID, userID uuid.UUID, workDate time.Time) (*domain.WorkAssignment, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}

	if _, err := s.brandRepo.GetByID(ctx, caller.OrganizationID, brandID); err != nil {
		return nil, err
	}
	shift, err := s.shiftRepo.GetByID(ctx, caller.OrganizationID, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.BrandID != brandID {
		return nil, domain.Invalid("shift does not belong to the given brand")
	}
	position, err := s.positionRepo.GetByID(ctx, caller.OrganizationID, positionID)
	if err != nil {
		return nil, err
	}
	if position.BrandID != brandID {
		return nil, domain.Invalid("position does not belong to the given brand")
	}
	user, err := s.userRepo.GetByID(ctx, caller.OrganizationID, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.Invalid("user account is deactivated")
	}

	template, err := s.checklistRepo.ActiveTemplateForCombo(ctx, caller.OrganizationID, brandID, shiftID, positionID)
	if err != nil {
		metrics.ObserveAssignmentCreated("no_template")
		return nil, err
	}
	snapshot, err := domain.GenerateSnapshot(template, s.now())
	if err != nil {
		metrics.ObserveAssignmentCreated("empty_template")
		return nil, err
	}

	assignment := &domain.WorkAssignment{
		OrganizationID: caller.OrganizationID,
		BrandID:        brandID,
		ShiftID:        shiftID,
		PositionID:     positionID,
		UserID:         userID,
		AssignedBy:     caller.UserID,
		WorkDate:       workDate.UTC().Truncate(24 * time.Hour),
		Status:         domain.StatusAssigned,
		Snapshot:       snapshot,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		metrics.ObserveAssignmentCreated("error")
		return nil, err
	}
	metrics.ObserveAssignmentCreated("ok")

	s.logger.Info("assignment created",
		slog.String("assignment_id", assignment.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("work_date", assignment.WorkDate.Format("2006-01-02")),
		slog.Int("items", len(snapshot.Items)),
	)

	s.notifier.Notify(ctx, caller.OrganizationID, userID,
		domain.NotifyWorkAssigned, domain.RefWorkAssignment, assignment.ID,
		fmt.Sprintf("You have been assigned %s on %s", template.Name, assignment.WorkDate.Format("2006-01-02")),
	)
	return assignment, nil
}

// Get resolves an assignment. Staff can only read their own.
func (s *AssignmentService) Get(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.WorkAssignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsManager() && a.UserID != caller.UserID {
		return nil, domain.Forbidden("assignment belongs to another user")
	}
	return a, nil
}

// List returns a filtered page of the organization's assignments. Staff
// callers are restricted to their own regardless of the filter.
func (s *AssignmentService) List(ctx context.Context, caller domain.Caller, f domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	if !caller.IsManager() {
		return s.assignmentRepo.ListByUser(ctx, caller.OrganizationID, caller.UserID, f)
	}
	return s.assignmentRepo.List(ctx, caller.OrganizationID, f)
}

// Delete removes an assignment and its embedded snapshot.
func (s *AssignmentService) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}
	if err := s.assignmentRepo.Delete(ctx, caller.OrganizationID, id); err != nil {
		return err
	}
	s.logger.Info("assignment deleted", slog.String("assignment_id", id.String()))
	return nil
}

// authorizeItemEdit enforces that snapshot items are edited only by the
// assigned user, unless the caller holds administrative override.
func authorizeItemEdit(caller domain.Caller, a *domain.WorkAssignment) error {
	if a.UserID != caller.UserID && !caller.IsManager() {
		return domain.Forbidden("only the assigned user can edit this checklist")
	}
	return nil
}

// CompleteItem marks one snapshot item completed. The read, the edit and the
// status recomputation run in a single transaction under a row lock, so
// concurrent completions of different items on the same assignment serialize
// without losing updates. Re-completing a completed item succeeds and keeps
// the first completion timestamp.
func (s *AssignmentService) CompleteItem(ctx context.Context, caller domain.Caller, assignmentID, templateItemID uuid.UUID, verificationData *string) (*domain.WorkAssignment, error) {
	var prevStatus domain.AssignmentStatus
	updated, err := s.assignmentRepo.UpdateWithLock(ctx, caller.OrganizationID, assignmentID, func(a *domain.WorkAssignment) error {
		if err := authorizeItemEdit(caller, a); err != nil {
			return err
		}
		prevStatus = a.Status
		return a.CompleteItem(templateItemID, verificationData, s.now())
	})
	if err != nil {
		metrics.ObserveItemCompletion("complete", "error")
		return nil, err
	}
	metrics.ObserveItemCompletion("complete", "ok")

	if updated.Status == domain.StatusCompleted && prevStatus != domain.StatusCompleted {
		metrics.ObserveAssignmentCompleted()
		s.logger.Info("assignment completed",
			slog.String("assignment_id", assignmentID.String()),
			slog.String("user_id", updated.UserID.String()),
		)
		s.notifier.Notify(ctx, caller.OrganizationID, updated.AssignedBy,
			domain.NotifyTaskCompleted, domain.RefWorkAssignment, updated.ID,
			fmt.Sprintf("%s checklist for %s is complete", updated.Snapshot.TemplateName, updated.WorkDate.Format("2006-01-02")),
		)
	}
	return updated, nil
}

// UncompleteItem clears one snapshot item's completion state. Allowed only
// while the assignment is in progress.
func (s *AssignmentService) UncompleteItem(ctx context.Context, caller domain.Caller, assignmentID, templateItemID uuid.UUID) (*domain.WorkAssignment, error) {
	updated, err := s.assignmentRepo.UpdateWithLock(ctx, caller.OrganizationID, assignmentID, func(a *domain.WorkAssignment) error {
		if err := authorizeItemEdit(caller, a); err != nil {
			return err
		}
		return a.UncompleteItem(templateItemID)
	})
	if err != nil {
		metrics.ObserveItemCompletion("uncomplete", "error")
		return nil, err
	}
	metrics.ObserveItemCompletion("uncomplete", "ok")
	return updated, nil
}
