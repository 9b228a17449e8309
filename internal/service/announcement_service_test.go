package service

import (
	"context"
	"testing"

	"github.com/scrcorp/taskmanager-server/internal/domain"
)

func TestAnnouncementFanout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	anns := newMemAnnouncementRepo()
	svc := NewAnnouncementService(anns, env.brands, env.users, env.notifier, nil)

	ann, err := svc.Create(ctx, env.manager, nil, "Holiday hours", "We close early on Friday.")
	if err != nil {
		t.Fatalf("create announcement: %v", err)
	}
	if ann.BrandID != nil {
		t.Fatalf("expected org-wide announcement")
	}

	// Everyone except the author is notified.
	if len(env.notifier.emitted) != 1 {
		t.Fatalf("expected 1 notification (staff only), got %d", len(env.notifier.emitted))
	}
	if env.notifier.emitted[0].UserID != env.staff.UserID {
		t.Fatalf("notification went to the wrong user")
	}

	if _, err := svc.Create(ctx, env.staff, nil, "Nope", "body"); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for staff poster, got %v", err)
	}
	if _, err := svc.Create(ctx, env.manager, nil, "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty post, got %v", err)
	}
}

func TestAnnouncementDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	anns := newMemAnnouncementRepo()
	svc := NewAnnouncementService(anns, env.brands, env.users, env.notifier, nil)

	ann, err := svc.Create(ctx, env.manager, &env.brand.ID, "Brand note", "body")
	if err != nil {
		t.Fatalf("create announcement: %v", err)
	}

	if err := svc.Delete(ctx, env.staff, ann.ID); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for staff delete, got %v", err)
	}
	if err := svc.Delete(ctx, env.manager, ann.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, env.manager, ann.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
