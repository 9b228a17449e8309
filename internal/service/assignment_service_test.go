package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// testEnv wires the in-memory fakes into one organization with a brand, a
// shift, a position, a manager and a staff user, plus an active two-item
// checklist template for the combination.
type testEnv struct {
	orgID      uuid.UUID
	brand      *domain.Brand
	shift      *domain.Shift
	position   *domain.Position
	manager    domain.Caller
	staff      domain.Caller
	template   *domain.ChecklistTemplate
	brands     *memBrandRepo
	shifts     *memShiftRepo
	positions  *memPositionRepo
	users      *memUserRepo
	checklists *memChecklistRepo
	workRepo   *memAssignmentRepo
	notifier   *recordingNotifier
	svc        *AssignmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		orgID:    uuid.New(),
		brands:   newMemBrandRepo(),
		users:    newMemUserRepo(),
		workRepo: newMemAssignmentRepo(),
		notifier: &recordingNotifier{},
	}
	env.shifts = newMemShiftRepo(env.brands)
	env.positions = newMemPositionRepo(env.brands)
	env.checklists = newMemChecklistRepo(env.brands)

	env.brand = &domain.Brand{OrganizationID: env.orgID, Name: "Downtown", IsActive: true}
	if err := env.brands.Create(ctx, env.brand); err != nil {
		t.Fatalf("seed brand: %v", err)
	}
	env.shift = &domain.Shift{BrandID: env.brand.ID, Name: "Morning", SortOrder: 1}
	if err := env.shifts.Create(ctx, env.shift); err != nil {
		t.Fatalf("seed shift: %v", err)
	}
	env.position = &domain.Position{BrandID: env.brand.ID, Name: "Grill", SortOrder: 1}
	if err := env.positions.Create(ctx, env.position); err != nil {
		t.Fatalf("seed position: %v", err)
	}

	manager := &domain.User{OrganizationID: env.orgID, Username: "manager", IsActive: true}
	if err := env.users.Create(ctx, manager); err != nil {
		t.Fatalf("seed manager: %v", err)
	}
	staff := &domain.User{OrganizationID: env.orgID, Username: "staff", IsActive: true}
	if err := env.users.Create(ctx, staff); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	env.manager = domain.Caller{UserID: manager.ID, OrganizationID: env.orgID, RoleLevel: domain.RoleLevelGeneralManager}
	env.staff = domain.Caller{UserID: staff.ID, OrganizationID: env.orgID, RoleLevel: domain.RoleLevelStaff}

	env.template = &domain.ChecklistTemplate{
		BrandID:    env.brand.ID,
		ShiftID:    env.shift.ID,
		PositionID: env.position.ID,
		Name:       "Opening checklist",
		IsActive:   true,
		Items: []domain.ChecklistTemplateItem{
			{Title: "Clean the grill", VerificationType: domain.VerificationNone, SortOrder: 1, IsActive: true},
			{Title: "Stock napkins", VerificationType: domain.VerificationNone, SortOrder: 2, IsActive: true},
		},
	}
	if err := env.checklists.CreateTemplate(ctx, env.template); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	env.svc = NewAssignmentService(env.workRepo, env.checklists, env.brands, env.shifts, env.positions, env.users, env.notifier, nil)
	return env
}

func workDate() time.Time {
	return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
}

func TestCreateAssignmentSnapshotsTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if a.Status != domain.StatusAssigned {
		t.Fatalf("expected assigned status, got %s", a.Status)
	}
	if len(a.Snapshot.Items) != 2 {
		t.Fatalf("expected 2 snapshot items, got %d", len(a.Snapshot.Items))
	}
	if a.Snapshot.TemplateID != env.template.ID || a.Snapshot.TemplateName != env.template.Name {
		t.Fatalf("snapshot should carry template identity")
	}
	for _, item := range a.Snapshot.Items {
		if item.IsCompleted || item.CompletedAt != nil || item.VerificationData != nil {
			t.Fatalf("snapshot items must start incomplete: %+v", item)
		}
	}

	// The assignee gets notified.
	if len(env.notifier.emitted) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(env.notifier.emitted))
	}
	n := env.notifier.emitted[0]
	if n.UserID != env.staff.UserID || n.Type != domain.NotifyWorkAssigned || n.ReferenceID != a.ID {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestCreateAssignmentLaterTemplateEditsDoNotLeak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	env.template.Items[0].Title = "Renamed after snapshot"
	env.template.Items = append(env.template.Items, domain.ChecklistTemplateItem{
		ID: uuid.New(), Title: "Added later", SortOrder: 3, IsActive: true,
	})

	got, err := env.svc.Get(ctx, env.manager, a.ID)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if len(got.Snapshot.Items) != 2 {
		t.Fatalf("snapshot gained items from template edit")
	}
	if got.Snapshot.Items[0].Title != "Clean the grill" {
		t.Fatalf("snapshot title changed with template edit: %q", got.Snapshot.Items[0].Title)
	}
}

func TestCreateAssignmentDuplicateCombo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate()); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	_, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict on duplicate assignment, got %v", err)
	}
}

func TestCreateAssignmentRequiresManager(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Create(context.Background(), env.staff, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for staff caller, got %v", err)
	}
}

func TestCreateAssignmentNoActiveTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.template.IsActive = false

	_, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found without active template, got %v", err)
	}
}

func TestCompleteItemLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	itemA := a.Snapshot.Items[0].TemplateItemID
	itemB := a.Snapshot.Items[1].TemplateItemID
	env.notifier.emitted = nil

	// Complete A: in_progress.
	updated, err := env.svc.CompleteItem(ctx, env.staff, a.ID, itemA, nil)
	if err != nil {
		t.Fatalf("complete item A: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", updated.Status)
	}
	firstCompletedAt := updated.Snapshot.Item(itemA).CompletedAt
	if firstCompletedAt == nil {
		t.Fatalf("completed_at not set")
	}

	// Re-complete A: idempotent, first timestamp wins.
	updated, err = env.svc.CompleteItem(ctx, env.staff, a.ID, itemA, nil)
	if err != nil {
		t.Fatalf("re-complete item A: %v", err)
	}
	if !updated.Snapshot.Item(itemA).CompletedAt.Equal(*firstCompletedAt) {
		t.Fatalf("re-completion changed completed_at")
	}
	if updated.Status != domain.StatusInProgress {
		t.Fatalf("expected in_progress after idempotent complete, got %s", updated.Status)
	}

	// Complete B: completed, completion notification to the assigner.
	updated, err = env.svc.CompleteItem(ctx, env.staff, a.ID, itemB, nil)
	if err != nil {
		t.Fatalf("complete item B: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	if len(env.notifier.emitted) != 1 {
		t.Fatalf("expected completion notification, got %d", len(env.notifier.emitted))
	}
	if env.notifier.emitted[0].UserID != env.manager.UserID || env.notifier.emitted[0].Type != domain.NotifyTaskCompleted {
		t.Fatalf("unexpected completion notification: %+v", env.notifier.emitted[0])
	}

	// Terminal: further edits conflict and change nothing.
	if _, err := env.svc.CompleteItem(ctx, env.staff, a.ID, itemA, nil); !domain.IsConflict(err) {
		t.Fatalf("expected conflict on completed assignment, got %v", err)
	}
	after, err := env.svc.Get(ctx, env.staff, a.ID)
	if err != nil {
		t.Fatalf("get after conflict: %v", err)
	}
	if after.Status != domain.StatusCompleted || after.Snapshot.CompletedCount() != 2 {
		t.Fatalf("rejected edit mutated state: %s %d", after.Status, after.Snapshot.CompletedCount())
	}
}

func TestCompleteItemUnknownID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if _, err := env.svc.CompleteItem(ctx, env.staff, a.ID, uuid.New(), nil); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}
	if _, err := env.svc.CompleteItem(ctx, env.staff, uuid.New(), a.Snapshot.Items[0].TemplateItemID, nil); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for unknown assignment, got %v", err)
	}
}

func TestItemEditAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	itemA := a.Snapshot.Items[0].TemplateItemID

	// Another staff member cannot edit.
	other := &domain.User{OrganizationID: env.orgID, Username: "other", IsActive: true}
	if err := env.users.Create(ctx, other); err != nil {
		t.Fatalf("seed other: %v", err)
	}
	otherCaller := domain.Caller{UserID: other.ID, OrganizationID: env.orgID, RoleLevel: domain.RoleLevelStaff}
	if _, err := env.svc.CompleteItem(ctx, otherCaller, a.ID, itemA, nil); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for other staff, got %v", err)
	}

	// A manager has administrative override.
	if _, err := env.svc.CompleteItem(ctx, env.manager, a.ID, itemA, nil); err != nil {
		t.Fatalf("manager override failed: %v", err)
	}
}

func TestUncompleteItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	itemA := a.Snapshot.Items[0].TemplateItemID

	// Not allowed while still assigned.
	if _, err := env.svc.UncompleteItem(ctx, env.staff, a.ID, itemA); !domain.IsConflict(err) {
		t.Fatalf("expected conflict while assigned, got %v", err)
	}

	if _, err := env.svc.CompleteItem(ctx, env.staff, a.ID, itemA, nil); err != nil {
		t.Fatalf("complete item: %v", err)
	}

	// Reverting the only completion returns to assigned.
	updated, err := env.svc.UncompleteItem(ctx, env.staff, a.ID, itemA)
	if err != nil {
		t.Fatalf("uncomplete item: %v", err)
	}
	if updated.Status != domain.StatusAssigned {
		t.Fatalf("expected assigned after revert, got %s", updated.Status)
	}
	item := updated.Snapshot.Item(itemA)
	if item.IsCompleted || item.CompletedAt != nil || item.VerificationData != nil {
		t.Fatalf("uncomplete left completion fields set: %+v", item)
	}
}

func TestCrossOrgAssignmentsInvisible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate())
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	intruder := domain.Caller{UserID: uuid.New(), OrganizationID: uuid.New(), RoleLevel: domain.RoleLevelOwner}
	if _, err := env.svc.Get(ctx, intruder, a.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found across orgs, got %v", err)
	}
	if _, err := env.svc.CompleteItem(ctx, intruder, a.ID, a.Snapshot.Items[0].TemplateItemID, nil); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for cross-org edit, got %v", err)
	}
	list, total, err := env.svc.List(ctx, intruder, domain.AssignmentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Fatalf("cross-org list leaked %d assignments", total)
	}
}

func TestStaffListRestrictedToOwn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := &domain.User{OrganizationID: env.orgID, Username: "other", IsActive: true}
	if err := env.users.Create(ctx, other); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	if _, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, env.staff.UserID, workDate()); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if _, err := env.svc.Create(ctx, env.manager, env.brand.ID, env.shift.ID, env.position.ID, other.ID, workDate()); err != nil {
		t.Fatalf("create other assignment: %v", err)
	}

	_, total, err := env.svc.List(ctx, env.staff, domain.AssignmentFilter{})
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if total != 1 {
		t.Fatalf("staff should see only their own assignment, got %d", total)
	}

	_, total, err = env.svc.List(ctx, env.manager, domain.AssignmentFilter{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if total != 2 {
		t.Fatalf("manager should see both assignments, got %d", total)
	}
}
