package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// TaskService manages ad-hoc tasks assigned outside the scheduled checklist
// flow.
type TaskService struct {
	taskRepo  domain.TaskRepository
	brandRepo domain.BrandRepository
	userRepo  domain.UserRepository
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo domain.TaskRepository,
	brandRepo domain.BrandRepository,
	userRepo domain.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskService{
		taskRepo:  taskRepo,
		brandRepo: brandRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Create assigns an ad-hoc task to a user and notifies them.
func (s *TaskService) Create(ctx context.Context, caller domain.Caller, brandID, userID uuid.UUID, title, description string, dueDate *time.Time) (*domain.AdditionalTask, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if title == "" {
		return nil, domain.Invalid("task title is required")
	}
	if _, err := s.brandRepo.GetByID(ctx, caller.OrganizationID, brandID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, caller.OrganizationID, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.Invalid("user account is deactivated")
	}

	task := &domain.AdditionalTask{
		OrganizationID: caller.OrganizationID,
		BrandID:        brandID,
		UserID:         userID,
		AssignedBy:     caller.UserID,
		Title:          title,
		Description:    description,
		DueDate:        dueDate,
		Status:         domain.TaskPending,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()),
	)
	s.notifier.Notify(ctx, caller.OrganizationID, userID,
		domain.NotifyTaskAssigned, domain.RefAdditionalTask, task.ID,
		fmt.Sprintf("New task: %s", title),
	)
	return task, nil
}

// Get resolves a task. Staff can only read their own.
func (s *TaskService) Get(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.AdditionalTask, error) {
	task, err := s.taskRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsManager() && task.UserID != caller.UserID {
		return nil, domain.Forbidden("task belongs to another user")
	}
	return task, nil
}

// List returns tasks. Staff callers see only their own regardless of filter.
func (s *TaskService) List(ctx context.Context, caller domain.Caller, userID *uuid.UUID, status domain.TaskStatus) ([]*domain.AdditionalTask, error) {
	if !caller.IsManager() {
		own := caller.UserID
		userID = &own
	}
	if status != "" && status != domain.TaskPending && status != domain.TaskCompleted {
		return nil, domain.Invalid("unknown task status %q", status)
	}
	return s.taskRepo.List(ctx, caller.OrganizationID, userID, status)
}

// Complete marks a task done. Only the assignee or a manager may complete
// it; completing an already completed task is a ConflictError.
func (s *TaskService) Complete(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.AdditionalTask, error) {
	task, err := s.taskRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != caller.UserID && !caller.IsManager() {
		return nil, domain.Forbidden("only the assignee can complete this task")
	}
	if task.Status == domain.TaskCompleted {
		return nil, domain.Conflict("task is already completed")
	}

	ts := s.now().UTC()
	task.Status = domain.TaskCompleted
	task.CompletedAt = &ts
	if err := s.taskRepo.Update(ctx, caller.OrganizationID, task); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, caller.OrganizationID, task.AssignedBy,
		domain.NotifyTaskCompleted, domain.RefAdditionalTask, task.ID,
		fmt.Sprintf("Task completed: %s", task.Title),
	)
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if !caller.IsManager() {
		return domain.Forbidden("manager role required")
	}
	return s.taskRepo.Delete(ctx, caller.OrganizationID, id)
}
