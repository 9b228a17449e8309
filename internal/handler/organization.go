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

// OrganizationHandler serves the organization profile and its structural
// entities: brands, shifts and positions.
type OrganizationHandler struct {
	orgService *service.OrganizationService
	logger     *slog.Logger
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(orgService *service.OrganizationService, logger *slog.Logger) *OrganizationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationHandler{orgService: orgService, logger: logger}
}

type organizationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type brandResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type shiftResponse struct {
	ID        uuid.UUID `json:"id"`
	BrandID   uuid.UUID `json:"brand_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

type positionResponse struct {
	ID        uuid.UUID `json:"id"`
	BrandID   uuid.UUID `json:"brand_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

func brandResponseFrom(b *domain.Brand) brandResponse {
	return brandResponse{ID: b.ID, Name: b.Name, Address: b.Address, IsActive: b.IsActive, CreatedAt: b.CreatedAt}
}

func shiftResponseFrom(s *domain.Shift) shiftResponse {
	return shiftResponse{ID: s.ID, BrandID: s.BrandID, Name: s.Name, SortOrder: s.SortOrder}
}

func positionResponseFrom(p *domain.Position) positionResponse {
	return positionResponse{ID: p.ID, BrandID: p.BrandID, Name: p.Name, SortOrder: p.SortOrder}
}

// Get handles GET /api/v1/organization.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	org, err := h.orgService.GetOrganization(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, organizationResponse{ID: org.ID, Name: org.Name, IsActive: org.IsActive, CreatedAt: org.CreatedAt})
}

type updateOrganizationRequest struct {
	Name string `json:"name"`
}

// Update handles PUT /api/v1/organization.
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req updateOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	org, err := h.orgService.UpdateOrganization(r.Context(), caller, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, organizationResponse{ID: org.ID, Name: org.Name, IsActive: org.IsActive, CreatedAt: org.CreatedAt})
}

type brandRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CreateBrand handles POST /api/v1/brands.
func (h *OrganizationHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req brandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	brand, err := h.orgService.CreateBrand(r.Context(), caller, req.Name, req.Address)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, brandResponseFrom(brand))
}

// GetBrand handles GET /api/v1/brands/{id}.
func (h *OrganizationHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "brand")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	brand, err := h.orgService.GetBrand(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, brandResponseFrom(brand))
}

// ListBrands handles GET /api/v1/brands.
func (h *OrganizationHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	brands, err := h.orgService.ListBrands(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]brandResponse, 0, len(brands))
	for _, b := range brands {
		out = append(out, brandResponseFrom(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateBrand handles PUT /api/v1/brands/{id}.
func (h *OrganizationHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "brand")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req brandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	brand, err := h.orgService.UpdateBrand(r.Context(), caller, id, req.Name, req.Address)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, brandResponseFrom(brand))
}

// DeleteBrand handles DELETE /api/v1/brands/{id} (soft delete).
func (h *OrganizationHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "brand")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.orgService.DeactivateBrand(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type shiftRequest struct {
	BrandID   string `json:"brand_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// CreateShift handles POST /api/v1/shifts.
func (h *OrganizationHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req shiftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	brandID, err := uuid.Parse(req.BrandID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid brand_id"))
		return
	}

	shift, err := h.orgService.CreateShift(r.Context(), caller, brandID, req.Name, req.SortOrder)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, shiftResponseFrom(shift))
}

// ListShifts handles GET /api/v1/shifts?brand_id=.
func (h *OrganizationHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	brandID, err := queryUUID(r, "brand_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if brandID == nil {
		writeError(w, h.logger, domain.Invalid("brand_id is required"))
		return
	}

	shifts, err := h.orgService.ListShifts(r.Context(), caller, *brandID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]shiftResponse, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, shiftResponseFrom(s))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateSlotRequest struct {
	Name      string `json:"name"`
	SortOrder *int   `json:"sort_order"`
}

// UpdateShift handles PUT /api/v1/shifts/{id}.
func (h *OrganizationHandler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "shift")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	shift, err := h.orgService.UpdateShift(r.Context(), caller, id, req.Name, req.SortOrder)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, shiftResponseFrom(shift))
}

// DeleteShift handles DELETE /api/v1/shifts/{id}.
func (h *OrganizationHandler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "shift")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.orgService.DeleteShift(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// CreatePosition handles POST /api/v1/positions.
func (h *OrganizationHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req shiftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	brandID, err := uuid.Parse(req.BrandID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid brand_id"))
		return
	}

	position, err := h.orgService.CreatePosition(r.Context(), caller, brandID, req.Name, req.SortOrder)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, positionResponseFrom(position))
}

// ListPositions handles GET /api/v1/positions?brand_id=.
func (h *OrganizationHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	brandID, err := queryUUID(r, "brand_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if brandID == nil {
		writeError(w, h.logger, domain.Invalid("brand_id is required"))
		return
	}

	positions, err := h.orgService.ListPositions(r.Context(), caller, *brandID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, positionResponseFrom(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdatePosition handles PUT /api/v1/positions/{id}.
func (h *OrganizationHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "position")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	position, err := h.orgService.UpdatePosition(r.Context(), caller, id, req.Name, req.SortOrder)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponseFrom(position))
}

// DeletePosition handles DELETE /api/v1/positions/{id}.
func (h *OrganizationHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "position")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.orgService.DeletePosition(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
