package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/domain"
)

type PgLeaveRepository struct {
	db *sqlx.DB
}

func NewPgLeaveRepository(db *sqlx.DB) *PgLeaveRepository {
	return &PgLeaveRepository{db: db}
}

func (r *PgLeaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) error {
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = time.Now()
	}
	if leave.UpdatedAt.IsZero() {
		leave.UpdatedAt = leave.CreatedAt
	}
	query := `
		INSERT INTO leave_requests (id, employee_id, employee_name, approver_id, leave_type_name,
			start_date, end_date, reason, status, calendar_event_id, created_at, updated_at)
		VALUES (:id, :employee_id, :employee_name, :approver_id, :leave_type_name,
			:start_date, :end_date, :reason, :status, :calendar_event_id, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, leave)
	return err
}

func (r *PgLeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeaveRequest, error) {
	query := `SELECT * FROM leave_requests WHERE id = $1`
	var leave domain.LeaveRequest
	err := r.db.GetContext(ctx, &leave, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLeaveNotFound
	}
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *PgLeaveRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeaveStatus) error {
	query := `
		UPDATE leave_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	return requireMatch(res)
}

func (r *PgLeaveRepository) UpdateDates(ctx context.Context, id uuid.UUID, leave *domain.LeaveRequest) error {
	query := `
		UPDATE leave_requests
		SET start_date = $2, end_date = $3, reason = $4, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, leave.StartDate, leave.EndDate, leave.Reason)
	if err != nil {
		return err
	}
	return requireMatch(res)
}

func (r *PgLeaveRepository) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID *string) error {
	query := `
		UPDATE leave_requests
		SET calendar_event_id = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, eventID)
	if err != nil {
		return err
	}
	return requireMatch(res)
}

func requireMatch(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrLeaveNotFound
	}
	return nil
}
