package calendar

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/tanmay0711/leaveflow/internal/modules/calendar/application"
	"github.com/tanmay0711/leaveflow/internal/modules/calendar/infrastructure/persistence/postgres"
	calendar_http "github.com/tanmay0711/leaveflow/internal/modules/calendar/interfaces/http"
)

type Module struct {
	service *application.CalendarService
	handler *calendar_http.CalendarHandler
}

func NewModule(db *sqlx.DB, cfg application.Config, sessions calendar_http.SessionStore) *Module {
	repo := postgres.NewPgCredentialRepository(db)
	service := application.NewCalendarService(cfg, repo)

	if err := service.Restore(context.Background()); err != nil {
		log.Printf("[Calendar] restoring credentials failed: %v", err)
	}

	handler := calendar_http.NewCalendarHandler(service, sessions)

	return &Module{
		service: service,
		handler: handler,
	}
}

func (m *Module) HTTPHandler() *calendar_http.CalendarHandler {
	return m.handler
}

func (m *Module) Service() *application.CalendarService {
	return m.service
}
