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

// ChecklistHandler serves checklist template management.
type ChecklistHandler struct {
	checklistService *service.ChecklistService
	logger           *slog.Logger
}

// NewChecklistHandler creates a new checklist handler.
func NewChecklistHandler(checklistService *service.ChecklistService, logger *slog.Logger) *ChecklistHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChecklistHandler{checklistService: checklistService, logger: logger}
}

type templateItemResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	VerificationType string    `json:"verification_type"`
	SortOrder        int       `json:"sort_order"`
	IsActive         bool      `json:"is_active"`
}

type templateResponse struct {
	ID         uuid.UUID              `json:"id"`
	BrandID    uuid.UUID              `json:"brand_id"`
	ShiftID    uuid.UUID              `json:"shift_id"`
	PositionID uuid.UUID              `json:"position_id"`
	Name       string                 `json:"name"`
	IsActive   bool                   `json:"is_active"`
	Items      []templateItemResponse `json:"items"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

func templateItemResponseFrom(it domain.ChecklistTemplateItem) templateItemResponse {
	return templateItemResponse{
		ID:               it.ID,
		Title:            it.Title,
		Description:      it.Description,
		VerificationType: string(it.VerificationType),
		SortOrder:        it.SortOrder,
		IsActive:         it.IsActive,
	}
}

func templateResponseFrom(t *domain.ChecklistTemplate) templateResponse {
	items := make([]templateItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, templateItemResponseFrom(it))
	}
	return templateResponse{
		ID:         t.ID,
		BrandID:    t.BrandID,
		ShiftID:    t.ShiftID,
		PositionID: t.PositionID,
		Name:       t.Name,
		IsActive:   t.IsActive,
		Items:      items,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

type newItemRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	VerificationType string `json:"verification_type"`
	SortOrder        *int   `json:"sort_order"`
}

func (req newItemRequest) toService() service.NewTemplateItem {
	return service.NewTemplateItem{
		Title:            req.Title,
		Description:      req.Description,
		VerificationType: domain.VerificationType(req.VerificationType),
		SortOrder:        req.SortOrder,
	}
}

type createTemplateRequest struct {
	BrandID    string           `json:"brand_id"`
	ShiftID    string           `json:"shift_id"`
	PositionID string           `json:"position_id"`
	Name       string           `json:"name"`
	Items      []newItemRequest `json:"items"`
}

// Create handles POST /api/v1/checklists.
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req createTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	brandID, err := uuid.Parse(req.BrandID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid brand_id"))
		return
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid shift_id"))
		return
	}
	positionID, err := uuid.Parse(req.PositionID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid position_id"))
		return
	}

	items := make([]service.NewTemplateItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.toService())
	}

	template, err := h.checklistService.CreateTemplate(r.Context(), caller, brandID, shiftID, positionID, req.Name, items)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateResponseFrom(template))
}

// Get handles GET /api/v1/checklists/{id}.
func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "checklist template")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	template, err := h.checklistService.GetTemplate(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponseFrom(template))
}

// List handles GET /api/v1/checklists?brand_id=.
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	brandID, err := queryUUID(r, "brand_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	templates, err := h.checklistService.ListTemplates(r.Context(), caller, brandID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateResponseFrom(t))
	}
	writeJSON(w, http.StatusOK, out)
}

type renameTemplateRequest struct {
	Name string `json:"name"`
}

// Rename handles PUT /api/v1/checklists/{id}.
func (h *ChecklistHandler) Rename(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "checklist template")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req renameTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	template, err := h.checklistService.RenameTemplate(r.Context(), caller, id, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponseFrom(template))
}

// Delete handles DELETE /api/v1/checklists/{id}. Templates are deactivated,
// never dropped: snapshots generated from them stay auditable.
func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "checklist template")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.checklistService.DeactivateTemplate(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// AddItem handles POST /api/v1/checklists/{id}/items.
func (h *ChecklistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	templateID, err := pathUUID(r, "id", "checklist template")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req newItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.checklistService.AddItem(r.Context(), caller, templateID, req.toService())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateItemResponseFrom(*item))
}

type patchItemRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	VerificationType *string `json:"verification_type"`
	SortOrder        *int    `json:"sort_order"`
	IsActive         *bool   `json:"is_active"`
}

// UpdateItem handles PATCH /api/v1/checklists/{id}/items/{itemID}. Absent
// fields are left untouched.
func (h *ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	templateID, err := pathUUID(r, "id", "checklist template")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathUUID(r, "itemID", "checklist item")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req patchItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	patch := service.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	}
	if req.VerificationType != nil {
		vt := domain.VerificationType(*req.VerificationType)
		patch.VerificationType = &vt
	}

	item, err := h.checklistService.UpdateItem(r.Context(), caller, templateID, itemID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, templateItemResponseFrom(*item))
}

type reorderRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// Reorder handles PUT /api/v1/checklists/{id}/items/reorder. The id list
// must cover the template's active items exactly.
func (h *ChecklistHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	templateID, err := pathUUID(r, "id", "checklist template")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, h.logger, domain.Invalid("invalid item id %q", raw))
			return
		}
		ids = append(ids, id)
	}

	if err := h.checklistService.ReorderItems(r.Context(), caller, templateID, ids); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
