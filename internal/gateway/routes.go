package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tanmay0711/leaveflow/internal/gateway/middleware"
	calendar_http "github.com/tanmay0711/leaveflow/internal/modules/calendar/interfaces/http"
	leave_http "github.com/tanmay0711/leaveflow/internal/modules/leave/interfaces/http"
	notification_http "github.com/tanmay0711/leaveflow/internal/modules/notification/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleWare
	NotificationHandler *notification_http.NotificationHandler
	CalendarHandler     *calendar_http.CalendarHandler
	LeaveHandler        *leave_http.LeaveHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	auth := config.AuthMiddleware

	// Notification Routes
	mux.Handle("GET /notifications", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.ListNotifications)))
	mux.Handle("GET /notifications/unread-count", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.UnreadCount)))
	mux.Handle("PATCH /notifications/{id}/read", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAsRead)))
	mux.Handle("PATCH /notifications/read-all", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAllAsRead)))
	mux.Handle("DELETE /notifications/{id}", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.Delete)))
	mux.Handle("GET /ws", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.Subscribe)))

	// Calendar Sync Routes
	mux.Handle("GET /calendar/auth-url", auth.RequireAuth(http.HandlerFunc(config.CalendarHandler.AuthURL)))
	mux.HandleFunc("GET /calendar/oauth/callback", config.CalendarHandler.OAuthCallback)
	mux.Handle("GET /calendar/status", auth.RequireAuth(http.HandlerFunc(config.CalendarHandler.Status)))

	// Leave Routes
	mux.Handle("POST /leaves", auth.RequireAuth(http.HandlerFunc(config.LeaveHandler.Submit)))
	mux.Handle("GET /leaves/{id}", auth.RequireAuth(http.HandlerFunc(config.LeaveHandler.Get)))
	mux.Handle("POST /leaves/{id}/approve", auth.RequireAuth(http.HandlerFunc(config.LeaveHandler.Approve)))
	mux.Handle("POST /leaves/{id}/reject", auth.RequireAuth(http.HandlerFunc(config.LeaveHandler.Reject)))
	mux.Handle("POST /leaves/{id}/cancel", auth.RequireAuth(http.HandlerFunc(config.LeaveHandler.Cancel)))
	mux.Handle("PATCH /leaves/{id}/dates", auth.RequireAuth(http.HandlerFunc(config.LeaveHandler.Reschedule)))

	return mux
}
