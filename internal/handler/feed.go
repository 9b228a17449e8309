package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/observability/metrics"
	"github.com/scrcorp/taskmanager-server/internal/security/auth"
	"github.com/scrcorp/taskmanager-server/internal/service"
)

// FeedHandler pushes unread notifications to a websocket client. Browser
// websocket clients cannot set the Authorization header, so the token rides
// in the token query parameter instead.
type FeedHandler struct {
	notificationService *service.NotificationService
	tokens              *auth.TokenManager
	logger              *slog.Logger
	allowedOrigins      []string
	pollInterval        time.Duration
}

// NewFeedHandler creates a new notification feed handler.
func NewFeedHandler(notificationService *service.NotificationService, tokens *auth.TokenManager, allowedOrigins []string, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{
		notificationService: notificationService,
		tokens:              tokens,
		logger:              logger,
		allowedOrigins:      allowedOrigins,
		pollInterval:        3 * time.Second,
	}
}

func (h *FeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /api/v1/ws/notifications?token=...
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, `{"error":"missing token"}`, http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateToken(tokenString)
	if err != nil {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return
	}
	caller, err := claims.Caller()
	if err != nil {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	metrics.WebsocketSessionOpened()
	defer metrics.WebsocketSessionClosed()

	h.logger.Debug("notification feed opened", slog.String("user_id", caller.UserID.String()))

	ctx := r.Context()

	// Drain client frames so close frames and pongs are processed.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	// Deliver everything unread on connect, then only what arrived since
	// the previous poll. The cursor keys on (created_at, id) so a poll that
	// lands between two notifications sharing a timestamp drops neither.
	cursor := domain.NotificationCursor{}

	for {
		notifications, err := h.notificationService.UnreadSince(ctx, caller, cursor)
		if err != nil {
			h.logger.Warn("notification feed poll failed", slog.String("error", err.Error()))
		} else {
			for _, n := range notifications {
				if err := ws.WriteJSON(notificationResponseFrom(n)); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						h.logger.Debug("notification feed closed", slog.String("user_id", caller.UserID.String()))
					}
					return
				}
				cursor = domain.CursorAfter(n)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-ticker.C:
		}
	}
}
