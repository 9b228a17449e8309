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

// TaskHandler serves ad-hoc tasks outside the scheduled checklist flow.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService *service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{taskService: taskService, logger: logger}
}

type taskResponse struct {
	ID          uuid.UUID  `json:"id"`
	BrandID     uuid.UUID  `json:"brand_id"`
	UserID      uuid.UUID  `json:"user_id"`
	AssignedBy  uuid.UUID  `json:"assigned_by"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func taskResponseFrom(t *domain.AdditionalTask) taskResponse {
	return taskResponse{
		ID:          t.ID,
		BrandID:     t.BrandID,
		UserID:      t.UserID,
		AssignedBy:  t.AssignedBy,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

type createTaskRequest struct {
	BrandID     string     `json:"brand_id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	brandID, err := uuid.Parse(req.BrandID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid brand_id"))
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, h.logger, domain.Invalid("invalid user_id"))
		return
	}

	task, err := h.taskService.Create(r.Context(), caller, brandID, userID, req.Title, req.Description, req.DueDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskResponseFrom(task))
}

// Get handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "task")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.taskService.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, taskResponseFrom(task))
}

// List handles GET /api/v1/tasks?user_id=&status=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	userID, err := queryUUID(r, "user_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	status := domain.TaskStatus(r.URL.Query().Get("status"))

	tasks, err := h.taskService.List(r.Context(), caller, userID, status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponseFrom(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// Complete handles POST /api/v1/tasks/{id}/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "task")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.taskService.Complete(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, taskResponseFrom(task))
}

// Delete handles DELETE /api/v1/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id, err := pathUUID(r, "id", "task")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.taskService.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
