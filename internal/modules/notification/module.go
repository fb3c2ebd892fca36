package notification

import (
	"github.com/jmoiron/sqlx"
	"github.com/tanmay0711/leaveflow/internal/modules/notification/application"
	"github.com/tanmay0711/leaveflow/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/tanmay0711/leaveflow/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/tanmay0711/leaveflow/internal/modules/notification/interfaces/http"
)

type Module struct {
	service *application.NotificationService
	handler *notification_http.NotificationHandler
	hub     *websocket.Hub
}

func NewModule(db *sqlx.DB) *Module {
	repo := postgres.NewPgNotificationRepository(db)
	hub := websocket.NewHub()

	service := application.NewNotificationService(repo, hub)
	handler := notification_http.NewNotificationHandler(service)

	return &Module{
		service: service,
		handler: handler,
		hub:     hub,
	}
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

func (m *Module) Shutdown() {
	m.hub.Stop()
}
