package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]*domain.WorkAssignment
}

func (m *memAssignmentRepo) Create(context.Context, *domain.WorkAssignment) error { return nil }
func (m *memAssignmentRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*domain.WorkAssignment, error) {
	return nil, domain.NotFound("work assignment")
}
func (m *memAssignmentRepo) List(context.Context, uuid.UUID, domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	return nil, 0, nil
}
func (m *memAssignmentRepo) ListByUser(context.Context, uuid.UUID, uuid.UUID, domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	return nil, 0, nil
}
func (m *memAssignmentRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (m *memAssignmentRepo) UpdateWithLock(context.Context, uuid.UUID, uuid.UUID, func(*domain.WorkAssignment) error) (*domain.WorkAssignment, error) {
	return nil, domain.NotFound("work assignment")
}

func (m *memAssignmentRepo) MarkMissed(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.assignments {
		if a.WorkDate.Before(before) && !a.Status.Terminal() {
			a.Status = domain.StatusMissed
			n++
		}
	}
	return n, nil
}

func seedAssignment(workDate time.Time, status domain.AssignmentStatus) *domain.WorkAssignment {
	return &domain.WorkAssignment{
		ID:       uuid.New(),
		WorkDate: workDate,
		Status:   status,
	}
}

func TestSweepMarksOverdueOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	overdueAssigned := seedAssignment(yesterday, domain.StatusAssigned)
	overdueInProgress := seedAssignment(yesterday, domain.StatusInProgress)
	overdueCompleted := seedAssignment(yesterday, domain.StatusCompleted)
	current := seedAssignment(today, domain.StatusAssigned)

	repo := &memAssignmentRepo{assignments: map[uuid.UUID]*domain.WorkAssignment{
		overdueAssigned.ID:   overdueAssigned,
		overdueInProgress.ID: overdueInProgress,
		overdueCompleted.ID:  overdueCompleted,
		current.ID:           current,
	}}

	w := NewMissedSweep(repo, nil, time.Hour, 0)
	w.now = func() time.Time { return now }
	w.sweep(context.Background())

	if overdueAssigned.Status != domain.StatusMissed {
		t.Fatalf("overdue assigned should be missed, got %s", overdueAssigned.Status)
	}
	if overdueInProgress.Status != domain.StatusMissed {
		t.Fatalf("overdue in_progress should be missed, got %s", overdueInProgress.Status)
	}
	if overdueCompleted.Status != domain.StatusCompleted {
		t.Fatalf("completed assignment must stay completed, got %s", overdueCompleted.Status)
	}
	if current.Status != domain.StatusAssigned {
		t.Fatalf("today's assignment must not be swept, got %s", current.Status)
	}
}

func TestSweepGracePeriod(t *testing.T) {
	// At 02:00 with a 6h grace, yesterday's assignments are not yet overdue.
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	a := seedAssignment(yesterday, domain.StatusAssigned)
	repo := &memAssignmentRepo{assignments: map[uuid.UUID]*domain.WorkAssignment{a.ID: a}}

	w := NewMissedSweep(repo, nil, time.Hour, 6*time.Hour)
	w.now = func() time.Time { return now }
	w.sweep(context.Background())

	if a.Status != domain.StatusAssigned {
		t.Fatalf("assignment swept inside grace window, got %s", a.Status)
	}

	// After the grace window the same assignment is claimed.
	w.now = func() time.Time { return now.Add(5 * time.Hour) }
	w.sweep(context.Background())
	if a.Status != domain.StatusMissed {
		t.Fatalf("assignment should be missed after grace, got %s", a.Status)
	}
}
