package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskmanager_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	assignmentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_assignments_created_total",
		Help: "Count of work assignments created",
	}, []string{"result"})

	itemCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_checklist_item_completions_total",
		Help: "Count of checklist item completion and uncompletion writes",
	}, []string{"operation", "result"})

	assignmentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskmanager_assignments_completed_total",
		Help: "Count of assignments that reached the completed state",
	})

	sweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_missed_sweep_runs_total",
		Help: "Count of missed-assignment sweep runs",
	}, []string{"result"})

	sweepMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskmanager_missed_sweep_marked_total",
		Help: "Count of assignments flipped to missed by the sweep",
	})

	notificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_notifications_emitted_total",
		Help: "Count of notifications emitted by type and result",
	}, []string{"type", "result"})

	websocketSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskmanager_websocket_sessions",
		Help: "Number of open notification feed sessions",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAssignmentCreated records an assignment creation attempt.
func ObserveAssignmentCreated(result string) {
	assignmentsCreated.WithLabelValues(result).Inc()
}

// ObserveItemCompletion records a completion or uncompletion write.
func ObserveItemCompletion(operation, result string) {
	itemCompletions.WithLabelValues(operation, result).Inc()
}

// ObserveAssignmentCompleted records an assignment reaching completed.
func ObserveAssignmentCompleted() {
	assignmentsCompleted.Inc()
}

// ObserveSweepRun records a sweep run and how many rows it flipped.
func ObserveSweepRun(result string, marked int64) {
	sweepRuns.WithLabelValues(result).Inc()
	if marked > 0 {
		sweepMarked.Add(float64(marked))
	}
}

// ObserveNotification records a notification emission attempt.
func ObserveNotification(notificationType, result string) {
	notificationsEmitted.WithLabelValues(notificationType, result).Inc()
}

// WebsocketSessionOpened increments the live session gauge.
func WebsocketSessionOpened() {
	websocketSessions.Inc()
}

// WebsocketSessionClosed decrements the live session gauge.
func WebsocketSessionClosed() {
	websocketSessions.Dec()
}
