package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

func TestNotifyBestEffort(t *testing.T) {
	ctx := context.Background()
	repo := newMemNotificationRepo()
	svc := NewNotificationService(repo, nil)
	orgID, userID := uuid.New(), uuid.New()

	svc.Notify(ctx, orgID, userID, domain.NotifyWorkAssigned, domain.RefWorkAssignment, uuid.New(), "hello")
	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.notifications))
	}

	// A failing store must not panic or propagate.
	repo.failCreate = true
	svc.Notify(ctx, orgID, userID, domain.NotifyWorkAssigned, domain.RefWorkAssignment, uuid.New(), "dropped")
	if len(repo.notifications) != 1 {
		t.Fatalf("failed emit should not store anything")
	}
}

func TestNotificationReadFlow(t *testing.T) {
	ctx := context.Background()
	repo := newMemNotificationRepo()
	svc := NewNotificationService(repo, nil)
	orgID, userID := uuid.New(), uuid.New()
	caller := domain.Caller{UserID: userID, OrganizationID: orgID, RoleLevel: domain.RoleLevelStaff}

	svc.Notify(ctx, orgID, userID, domain.NotifyAnnouncement, domain.RefAnnouncementEntry, uuid.New(), "one")
	svc.Notify(ctx, orgID, userID, domain.NotifyAnnouncement, domain.RefAnnouncementEntry, uuid.New(), "two")
	svc.Notify(ctx, orgID, uuid.New(), domain.NotifyAnnouncement, domain.RefAnnouncementEntry, uuid.New(), "someone else's")

	count, err := svc.UnreadCount(ctx, caller)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	list, total, err := svc.List(ctx, caller, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected own 2 notifications, got %d", total)
	}

	if err := svc.MarkRead(ctx, caller, list[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, caller)
	if count != 1 {
		t.Fatalf("expected 1 unread after mark, got %d", count)
	}

	// Cannot mark another user's notification.
	otherCaller := domain.Caller{UserID: uuid.New(), OrganizationID: orgID, RoleLevel: domain.RoleLevelStaff}
	if err := svc.MarkRead(ctx, otherCaller, list[1].ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for foreign notification, got %v", err)
	}

	n, err := svc.MarkAllRead(ctx, caller)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 flipped by mark-all, got %d", n)
	}
}

func TestUnreadSinceCursorKeepsTimestampTies(t *testing.T) {
	ctx := context.Background()
	repo := newMemNotificationRepo()
	svc := NewNotificationService(repo, nil)
	orgID, userID := uuid.New(), uuid.New()
	caller := domain.Caller{UserID: userID, OrganizationID: orgID, RoleLevel: domain.RoleLevelStaff}

	// Two notifications sharing a creation instant, plus a later one.
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := &domain.Notification{
		ID:             uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		OrganizationID: orgID, UserID: userID,
		Type: domain.NotifyWorkAssigned, Message: "first", CreatedAt: at,
	}
	twin := &domain.Notification{
		ID:             uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		OrganizationID: orgID, UserID: userID,
		Type: domain.NotifyWorkAssigned, Message: "twin", CreatedAt: at,
	}
	later := &domain.Notification{
		ID:             uuid.New(),
		OrganizationID: orgID, UserID: userID,
		Type: domain.NotifyWorkAssigned, Message: "later", CreatedAt: at.Add(time.Second),
	}
	repo.notifications = append(repo.notifications, first, twin, later)

	// The zero cursor delivers everything, oldest first.
	all, err := svc.UnreadSince(ctx, caller, domain.NotificationCursor{})
	if err != nil {
		t.Fatalf("unread since: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 notifications from the zero cursor, got %d", len(all))
	}
	if all[0].Message != "first" || all[1].Message != "twin" {
		t.Fatalf("expected timestamp ties ordered by id, got %q then %q", all[0].Message, all[1].Message)
	}

	// A cursor positioned at the first of the two ties must still deliver
	// its twin on the next poll.
	rest, err := svc.UnreadSince(ctx, caller, domain.CursorAfter(first))
	if err != nil {
		t.Fatalf("unread since cursor: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected the twin and the later notification, got %d", len(rest))
	}
	if rest[0].Message != "twin" {
		t.Fatalf("expected the twin first, got %q", rest[0].Message)
	}

	// A cursor at the twin has consumed the shared instant entirely.
	tail, err := svc.UnreadSince(ctx, caller, domain.CursorAfter(twin))
	if err != nil {
		t.Fatalf("unread since twin: %v", err)
	}
	if len(tail) != 1 || tail[0].Message != "later" {
		t.Fatalf("expected only the later notification, got %d", len(tail))
	}
}
