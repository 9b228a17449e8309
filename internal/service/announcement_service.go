package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// AnnouncementService manages org- and brand-scoped posts. Posting notifies
// every active user in the audience, best effort.
type AnnouncementService struct {
	announcementRepo domain.AnnouncementRepository
	brandRepo        domain.BrandRepository
	userRepo         domain.UserRepository
	notifier         Notifier
	logger           *slog.Logger
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(
	announcementRepo domain.AnnouncementRepository,
	brandRepo domain.BrandRepository,
	userRepo domain.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *AnnouncementService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnnouncementService{
		announcementRepo: announcementRepo,
		brandRepo:        brandRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		logger:           logger,
	}
}

// Create posts an announcement. A nil brand id makes it org-wide.
func (s *AnnouncementService) Create(ctx context.Context, caller domain.Caller, brandID *uuid.UUID, title, body string) (*domain.Announcement, error) {
	if !caller.IsManager() {
		return nil, domain.Forbidden("manager role required")
	}
	if title == "" || body == "" {
		return nil, domain.Invalid("title and body are required")
	}
	if brandID != nil {
		if _, err := s.brandRepo.GetByID(ctx, caller.OrganizationID, *brandID); err != nil {
			return nil, err
		}
	}

	ann := &domain.Announcement{
		OrganizationID: caller.OrganizationID,
		BrandID:        brandID,
		AuthorID:       caller.UserID,
		Title:          title,
		Body:           body,
	}
	if err := s.announcementRepo.Create(ctx, ann); err != nil {
		return nil, err
	}

	s.logger.Info("announcement posted",
		slog.String("announcement_id", ann.ID.String()),
		slog.Bool("org_wide", brandID == nil),
	)

	users, err := s.userRepo.ListByOrganization(ctx, caller.OrganizationID)
	if err != nil {
		s.logger.Warn("skipping announcement notifications", slog.String("error", err.Error()))
		return ann, nil
	}
	for _, u := range users {
		if !u.IsActive || u.ID == caller.UserID {
			continue
		}
		s.notifier.Notify(ctx, caller.OrganizationID, u.ID,
			domain.NotifyAnnouncement, domain.RefAnnouncementEntry, ann.ID,
			fmt.Sprintf("Announcement: %s", title),
		)
	}
	return ann, nil
}

// Get resolves an announcement within the caller's organization.
func (s *AnnouncementService) Get(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Announcement, error) {
	return s.announcementRepo.GetByID(ctx, caller.OrganizationID, id)
}

// List returns announcements visible to the caller, optionally narrowed to a
// brand's feed (its own posts plus org-wide ones).
func (s *AnnouncementService) List(ctx context.Context, caller domain.Caller, brandID *uuid.UUID, page, perPage int) ([]*domain.Announcement, int, error) {
	return s.announcementRepo.List(ctx, caller.OrganizationID, brandID, page, perPage)
}

// Delete removes an announcement. The author or a manager may delete it.
func (s *AnnouncementService) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	ann, err := s.announcementRepo.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return err
	}
	if ann.AuthorID != caller.UserID && !caller.IsManager() {
		return domain.Forbidden("only the author can delete this announcement")
	}
	return s.announcementRepo.Delete(ctx, caller.OrganizationID, id)
}
