package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/scrcorp/taskmanager-server/internal/observability/metrics"
	"github.com/scrcorp/taskmanager-server/internal/security/audit"
	"github.com/scrcorp/taskmanager-server/internal/security/auth"
	"github.com/scrcorp/taskmanager-server/internal/security/middleware"
	"github.com/scrcorp/taskmanager-server/internal/security/ratelimit"
)

// Handlers bundles every resource handler the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Organization *OrganizationHandler
	User         *UserHandler
	Checklist    *ChecklistHandler
	Assignment   *AssignmentHandler
	Task         *TaskHandler
	Announcement *AnnouncementHandler
	Notification *NotificationHandler
	Feed         *FeedHandler
	Health       *HealthHandler
}

// NewRouter assembles the full HTTP surface. Everything under /api/v1 except
// login, register and the websocket feed requires a valid bearer token.
func NewRouter(h Handlers, tokens *auth.TokenManager, limiter *ratelimit.Limiter, auditLog *audit.Logger, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(allowedOrigins))
	r.Use(metrics.HTTPMetricsMiddleware)
	r.Use(middleware.ValidateJSONContentType(logger))

	r.Get("/healthz", h.Health.Health)
	r.Get("/readyz", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "api")
		})

		// Public: authentication bootstrap. The websocket feed authenticates
		// itself through the token query parameter. Credential endpoints get
		// a tight per-address limit on top of the regular one.
		strict := middleware.StrictRateLimit(limiter, 10, time.Minute, logger)
		r.With(strict).Post("/auth/login", h.Auth.Login)
		r.With(strict).Post("/auth/register", h.Auth.Register)
		r.Handle("/ws/notifications", h.Feed)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWT(tokens, logger))
			r.Use(middleware.RateLimit(limiter, logger))
			r.Use(middleware.Audit(auditLog))

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/change-password", h.Auth.ChangePassword)

			r.Get("/organization", h.Organization.Get)
			r.Put("/organization", h.Organization.Update)

			r.Route("/brands", func(r chi.Router) {
				r.Post("/", h.Organization.CreateBrand)
				r.Get("/", h.Organization.ListBrands)
				r.Get("/{id}", h.Organization.GetBrand)
				r.Put("/{id}", h.Organization.UpdateBrand)
				r.Delete("/{id}", h.Organization.DeleteBrand)
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Post("/", h.Organization.CreateShift)
				r.Get("/", h.Organization.ListShifts)
				r.Put("/{id}", h.Organization.UpdateShift)
				r.Delete("/{id}", h.Organization.DeleteShift)
			})

			r.Route("/positions", func(r chi.Router) {
				r.Post("/", h.Organization.CreatePosition)
				r.Get("/", h.Organization.ListPositions)
				r.Put("/{id}", h.Organization.UpdatePosition)
				r.Delete("/{id}", h.Organization.DeletePosition)
			})

			r.Route("/roles", func(r chi.Router) {
				r.Post("/", h.User.CreateRole)
				r.Get("/", h.User.ListRoles)
				r.Delete("/{id}", h.User.DeleteRole)
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/", h.User.CreateUser)
				r.Get("/", h.User.ListUsers)
				r.Get("/{id}", h.User.GetUser)
				r.Put("/{id}", h.User.UpdateUser)
				r.Delete("/{id}", h.User.DeleteUser)
			})

			r.Route("/checklists", func(r chi.Router) {
				r.Post("/", h.Checklist.Create)
				r.Get("/", h.Checklist.List)
				r.Get("/{id}", h.Checklist.Get)
				r.Put("/{id}", h.Checklist.Rename)
				r.Delete("/{id}", h.Checklist.Delete)
				r.Post("/{id}/items", h.Checklist.AddItem)
				r.Patch("/{id}/items/{itemID}", h.Checklist.UpdateItem)
				r.Put("/{id}/items/reorder", h.Checklist.Reorder)
			})

			r.Route("/assignments", func(r chi.Router) {
				r.Post("/", h.Assignment.Create)
				r.Get("/", h.Assignment.List)
				r.Get("/{id}", h.Assignment.Get)
				r.Delete("/{id}", h.Assignment.Delete)
				r.Post("/{id}/items/{itemID}/complete", h.Assignment.CompleteItem)
				r.Post("/{id}/items/{itemID}/uncomplete", h.Assignment.UncompleteItem)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", h.Task.Create)
				r.Get("/", h.Task.List)
				r.Get("/{id}", h.Task.Get)
				r.Post("/{id}/complete", h.Task.Complete)
				r.Delete("/{id}", h.Task.Delete)
			})

			r.Route("/announcements", func(r chi.Router) {
				r.Post("/", h.Announcement.Create)
				r.Get("/", h.Announcement.List)
				r.Get("/{id}", h.Announcement.Get)
				r.Delete("/{id}", h.Announcement.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/{id}/read", h.Notification.MarkRead)
				r.Post("/read-all", h.Notification.MarkAllRead)
			})
		})
	})

	return r
}
