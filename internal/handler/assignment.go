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

// AssignmentHandler serves work assignments and their checklist snapshots.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	logger            *slog.Logger
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(assignmentService *service.AssignmentService, logger *slog.Logger) *AssignmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentHandler{assignmentService: assignmentService, logger: logger}
}

type assignmentResponse struct {
	ID         uuid.UUID                 `json:"id"`
	BrandID    uuid.UUID                 `json:"brand_id"`
	ShiftID    uuid.UUID                 `json:"shift_id"`
	PositionID uuid.UUID                 `json:"position_id"`
	UserID     uuid.UUID                 `json:"user_id"`
	AssignedBy uuid.UUID                 `json:"assigned_by"`
	WorkDate   string                    `json:"work_date"`
	Status     string                    `json:"status"`
	Snapshot   *domain.ChecklistSnapshot `json:"checklist_snapshot"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

func assignmentResponseFrom(a *domain.WorkAssignment) assignmentResponse {
	return assignmentResponse{
		ID:         a.ID,
		BrandID:    a.BrandID,
		ShiftID:    a.ShiftID,
		PositionID: a.PositionID,
		UserID:     a.UserID,
		AssignedBy: a.AssignedBy,
		WorkDate:   a.WorkDate.Format("2006-01-02"),
		Status:     string(a.Status),
		Snapshot:   a.Snapshot,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

type createAssignmentRequest struct {
	BrandID    string `json:"brand_id"`
	ShiftID    string `json:"shift_id"`
	PositionID string `json:"position_id"`
	UserID     string `json:"user_id"`
	WorkDate   string `json:"work_date"`
}

// Create handles POST /api/v1/assignments. The checklist snapshot is
// generated here, inside the same transaction as the assignment row.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ids := make([]uuid.UUID, 4)
	for i, pair := range []struct{ raw, name string }{
		{req.BrandID, "brand_id"},
		{req.ShiftID, "shift_id"},
		{req.PositionID, "position_id"},
		{req.UserID, "user_id"},
	} {
		id, err := uuid.Parse(pair.raw)
		if err != nil {
			writeError(w, h.logger, domain.Invalid("invalid %s", pair.name))
			return
		}
		ids[i] = id
	}

	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid work_date, want YYYY-MM-DD"))
		return
	}

	assignment, err := h.assignmentService.Create(r.Context(), caller, ids[0], ids[1], ids[2], ids[3], workDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignmentResponseFrom(assignment))
}

// Get handles GET /api/v1/assignments/{id}.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "work assignment")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	assignment, err := h.assignmentService.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentResponseFrom(assignment))
}

// List handles GET /api/v1/assignments with brand_id, user_id, status,
// date_from and date_to filters plus pagination. Staff callers only ever
// see their own assignments.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	brandID, err := queryUUID(r, "brand_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	userID, err := queryUUID(r, "user_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	dateFrom, err := queryDate(r, "date_from")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	dateTo, err := queryDate(r, "date_to")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := domain.AssignmentStatus(r.URL.Query().Get("status"))
	page, perPage := pagination(r)

	filter := domain.AssignmentFilter{
		BrandID:  brandID,
		UserID:   userID,
		Status:   status,
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Page:     page,
		PerPage:  perPage,
	}

	assignments, total, err := h.assignmentService.List(r.Context(), caller, filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, assignmentResponseFrom(a))
	}
	writeJSON(w, http.StatusOK, listResponse{Data: out, Total: total, Page: page, PerPage: perPage})
}

// Delete handles DELETE /api/v1/assignments/{id}.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "work assignment")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.assignmentService.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type completeItemRequest struct {
	VerificationData *string `json:"verification_data"`
}

// CompleteItem handles POST /api/v1/assignments/{id}/items/{itemID}/complete.
// Items are addressed by the template item id captured in the snapshot.
func (h *AssignmentHandler) CompleteItem(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	assignmentID, err := pathUUID(r, "id", "work assignment")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathUUID(r, "itemID", "checklist item")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req completeItemRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	assignment, err := h.assignmentService.CompleteItem(r.Context(), caller, assignmentID, itemID, req.VerificationData)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentResponseFrom(assignment))
}

// UncompleteItem handles POST /api/v1/assignments/{id}/items/{itemID}/uncomplete.
func (h *AssignmentHandler) UncompleteItem(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	assignmentID, err := pathUUID(r, "id", "work assignment")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathUUID(r, "itemID", "checklist item")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	assignment, err := h.assignmentService.UncompleteItem(r.Context(), caller, assignmentID, itemID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentResponseFrom(assignment))
}
