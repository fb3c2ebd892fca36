package domain

import (
	"context"

	"github.com/google/uuid"
)

type LeaveRepository interface {
	Create(ctx context.Context, leave *LeaveRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status LeaveStatus) error
	UpdateDates(ctx context.Context, id uuid.UUID, leave *LeaveRequest) error
	SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID *string) error
}
