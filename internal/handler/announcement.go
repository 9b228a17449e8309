package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/security/middleware"
	"github.com/scrcorp/taskmanager-server/internal/service"
)

// AnnouncementHandler serves organization and brand announcements.
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
	logger              *slog.Logger
}

// NewAnnouncementHandler creates a new announcement handler.
func NewAnnouncementHandler(announcementService *service.AnnouncementService, logger *slog.Logger) *AnnouncementHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnouncementHandler{announcementService: announcementService, logger: logger}
}

type announcementResponse struct {
	ID        uuid.UUID  `json:"id"`
	BrandID   *uuid.UUID `json:"brand_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}

func announcementResponseFrom(a *domain.Announcement) announcementResponse {
	return announcementResponse{
		ID:        a.ID,
		BrandID:   a.BrandID,
		AuthorID:  a.AuthorID,
		Title:     a.Title,
		Body:      a.Body,
		CreatedAt: a.CreatedAt,
	}
}

type createAnnouncementRequest struct {
	BrandID *string `json:"brand_id"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
}

// Create handles POST /api/v1/announcements. Omitting brand_id makes the
// announcement organization-wide.
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req createAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var brandID *uuid.UUID
	if req.BrandID != nil {
		parsed, err := uuid.Parse(*req.BrandID)
		if err != nil {
			writeError(w, h.logger, domain.Invalid("invalid brand_id"))
			return
		}
		brandID = &parsed
	}

	ann, err := h.announcementService.Create(r.Context(), caller, brandID, req.Title, req.Body)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, announcementResponseFrom(ann))
}

// Get handles GET /api/v1/announcements/{id}.
func (h *AnnouncementHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "announcement")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ann, err := h.announcementService.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, announcementResponseFrom(ann))
}

// List handles GET /api/v1/announcements?brand_id= with pagination.
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	brandID, err := queryUUID(r, "brand_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	page, perPage := pagination(r)

	anns, total, err := h.announcementService.List(r.Context(), caller, brandID, page, perPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]announcementResponse, 0, len(anns))
	for _, a := range anns {
		out = append(out, announcementResponseFrom(a))
	}
	writeJSON(w, http.StatusOK, listResponse{Data: out, Total: total, Page: page, PerPage: perPage})
}

// Delete handles DELETE /api/v1/announcements/{id}.
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "announcement")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.announcementService.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
