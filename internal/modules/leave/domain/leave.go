package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// LeaveRequest carries what the side-effect layer needs: who is on leave,
// the inclusive date range, and the external calendar event reference this
// record owns once the leave is approved and synced.
type LeaveRequest struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	EmployeeID      uuid.UUID   `json:"employee_id" db:"employee_id"`
	EmployeeName    string      `json:"employee_name" db:"employee_name"`
	ApproverID      uuid.UUID   `json:"approver_id" db:"approver_id"`
	LeaveTypeName   string      `json:"leave_type_name" db:"leave_type_name"`
	StartDate       time.Time   `json:"start_date" db:"start_date"`
	EndDate         time.Time   `json:"end_date" db:"end_date"`
	Reason          string      `json:"reason" db:"reason"`
	Status          LeaveStatus `json:"status" db:"status"`
	CalendarEventID *string     `json:"calendar_event_id" db:"calendar_event_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

var (
	ErrLeaveNotFound     = errors.New("leave request not found")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrInvalidTransition = errors.New("invalid leave status transition")
)
