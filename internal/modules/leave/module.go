package leave

import (
	"github.com/jmoiron/sqlx"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/application"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/infrastructure/persistence/postgres"
	leave_http "github.com/tanmay0711/leaveflow/internal/modules/leave/interfaces/http"
)

type Module struct {
	service *application.LeaveService
	handler *leave_http.LeaveHandler
}

func NewModule(db *sqlx.DB, notifier application.Notifier, calendar application.CalendarSync) *Module {
	repo := postgres.NewPgLeaveRepository(db)
	service := application.NewLeaveService(repo, notifier, calendar)
	handler := leave_http.NewLeaveHandler(service)

	return &Module{
		service: service,
		handler: handler,
	}
}

func (m *Module) HTTPHandler() *leave_http.LeaveHandler {
	return m.handler
}

func (m *Module) Service() *application.LeaveService {
	return m.service
}
