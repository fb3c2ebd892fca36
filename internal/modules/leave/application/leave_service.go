package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	calendardomain "github.com/tanmay0711/leaveflow/internal/modules/calendar/domain"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/domain"
	notificationdomain "github.com/tanmay0711/leaveflow/internal/modules/notification/domain"
)

// Notifier is the slice of the notification service this module depends on.
type Notifier interface {
	Create(ctx context.Context, recipientID uuid.UUID, senderID *uuid.UUID, type_ notificationdomain.NotificationType, title, message string, data notificationdomain.Payload) (*notificationdomain.Notification, error)
}

// CalendarSync is the slice of the calendar adapter this module depends on.
type CalendarSync interface {
	IsAuthorized() bool
	CreateLeaveEvent(ctx context.Context, ev calendardomain.LeaveEvent) (string, error)
	UpdateLeaveEvent(ctx context.Context, eventID string, ev calendardomain.LeaveEvent) error
	DeleteLeaveEvent(ctx context.Context, eventID string) error
}

type SubmitRequest struct {
	EmployeeID    uuid.UUID `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	ApproverID    uuid.UUID `json:"approver_id"`
	LeaveTypeName string    `json:"leave_type_name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Reason        string    `json:"reason"`
}

// LeaveService orchestrates the side effects of leave state changes.
// Notification persistence and calendar mutation are two independent
// fallible steps with no shared transaction: a calendar failure leaves the
// durable notification in place and is logged for a later manual re-sync,
// never rolled back.
type LeaveService struct {
	repo     domain.LeaveRepository
	notifier Notifier
	calendar CalendarSync
}

func NewLeaveService(repo domain.LeaveRepository, notifier Notifier, calendar CalendarSync) *LeaveService {
	return &LeaveService{repo: repo, notifier: notifier, calendar: calendar}
}

// Submit records a pending request and notifies the approver.
func (s *LeaveService) Submit(ctx context.Context, req SubmitRequest) (*domain.LeaveRequest, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	leave := &domain.LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    req.EmployeeID,
		EmployeeName:  req.EmployeeName,
		ApproverID:    req.ApproverID,
		LeaveTypeName: req.LeaveTypeName,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Reason:        req.Reason,
		Status:        domain.LeaveStatusPending,
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, err
	}

	s.notify(ctx, leave.ApproverID, &leave.EmployeeID, notificationdomain.NotificationTypeRequestSubmitted,
		"New leave request",
		fmt.Sprintf("%s requested %s leave", leave.EmployeeName, leave.LeaveTypeName),
		leave)

	return leave, nil
}

func (s *LeaveService) Get(ctx context.Context, id uuid.UUID) (*domain.LeaveRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve marks the request approved, notifies the employee and creates the
// external calendar event, storing the returned event id on the request.
func (s *LeaveService) Approve(ctx context.Context, id, approverID uuid.UUID) (*domain.LeaveRequest, error) {
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status != domain.LeaveStatusPending {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, domain.LeaveStatusApproved); err != nil {
		return nil, err
	}
	leave.Status = domain.LeaveStatusApproved

	s.notify(ctx, leave.EmployeeID, &approverID, notificationdomain.NotificationTypeLeaveApproved,
		"Leave request approved",
		fmt.Sprintf("Your %s leave was approved", leave.LeaveTypeName),
		leave)

	s.syncCalendarCreate(ctx, leave)

	return leave, nil
}

// Reject marks the request rejected and notifies the employee. If the
// request had already been approved and synced, the external event is
// removed.
func (s *LeaveService) Reject(ctx context.Context, id, approverID uuid.UUID) (*domain.LeaveRequest, error) {
	return s.close(ctx, id, approverID, domain.LeaveStatusRejected,
		notificationdomain.NotificationTypeLeaveRejected, "Leave request rejected")
}

// Cancel withdraws the request and removes its calendar event, if any. The
// approver is notified.
func (s *LeaveService) Cancel(ctx context.Context, id, employeeID uuid.UUID) (*domain.LeaveRequest, error) {
	return s.close(ctx, id, employeeID, domain.LeaveStatusCancelled,
		notificationdomain.NotificationTypeLeaveCancelled, "Leave request cancelled")
}

// Reschedule moves an existing request to new dates. An approved, synced
// request also gets its external event rewritten.
func (s *LeaveService) Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time, reason string) (*domain.LeaveRequest, error) {
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	leave.StartDate = start
	leave.EndDate = end
	if reason != "" {
		leave.Reason = reason
	}
	if err := s.repo.UpdateDates(ctx, id, leave); err != nil {
		return nil, err
	}

	if leave.Status == domain.LeaveStatusApproved && leave.CalendarEventID != nil {
		if err := s.calendar.UpdateLeaveEvent(ctx, *leave.CalendarEventID, toCalendarEvent(leave)); err != nil {
			log.Printf("[Leave] calendar update for %s failed: %v", leave.ID, err)
		}
	}
	return leave, nil
}

func (s *LeaveService) close(ctx context.Context, id, actorID uuid.UUID, status domain.LeaveStatus, type_ notificationdomain.NotificationType, title string) (*domain.LeaveRequest, error) {
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status == domain.LeaveStatusRejected || leave.Status == domain.LeaveStatusCancelled {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	leave.Status = status

	recipient := leave.EmployeeID
	if status == domain.LeaveStatusCancelled {
		recipient = leave.ApproverID
	}
	s.notify(ctx, recipient, &actorID, type_, title,
		fmt.Sprintf("%s leave for %s (%s)", leave.LeaveTypeName, leave.EmployeeName, status), leave)

	if leave.CalendarEventID != nil {
		if err := s.calendar.DeleteLeaveEvent(ctx, *leave.CalendarEventID); err != nil {
			log.Printf("[Leave] calendar delete for %s failed: %v", leave.ID, err)
		} else if err := s.repo.SetCalendarEventID(ctx, id, nil); err != nil {
			log.Printf("[Leave] clearing calendar event id for %s failed: %v", leave.ID, err)
		} else {
			leave.CalendarEventID = nil
		}
	}
	return leave, nil
}

// notify persists a notification; a failure here is logged and swallowed so
// the leave state change itself is not blocked.
func (s *LeaveService) notify(ctx context.Context, recipientID uuid.UUID, senderID *uuid.UUID, type_ notificationdomain.NotificationType, title, message string, leave *domain.LeaveRequest) {
	data := notificationdomain.Payload{
		"leave_id":   leave.ID.String(),
		"leave_type": leave.LeaveTypeName,
		"start_date": leave.StartDate.Format("2006-01-02"),
		"end_date":   leave.EndDate.Format("2006-01-02"),
	}
	if _, err := s.notifier.Create(ctx, recipientID, senderID, type_, title, message, data); err != nil {
		log.Printf("[Leave] notification for %s failed: %v", leave.ID, err)
	}
}

func (s *LeaveService) syncCalendarCreate(ctx context.Context, leave *domain.LeaveRequest) {
	if !s.calendar.IsAuthorized() {
		log.Printf("[Leave] calendar not authorized, skipping sync for %s", leave.ID)
		return
	}
	eventID, err := s.calendar.CreateLeaveEvent(ctx, toCalendarEvent(leave))
	if err != nil {
		log.Printf("[Leave] calendar create for %s failed: %v", leave.ID, err)
		return
	}
	if err := s.repo.SetCalendarEventID(ctx, leave.ID, &eventID); err != nil {
		log.Printf("[Leave] storing calendar event id for %s failed: %v", leave.ID, err)
		return
	}
	leave.CalendarEventID = &eventID
}

func toCalendarEvent(leave *domain.LeaveRequest) calendardomain.LeaveEvent {
	return calendardomain.LeaveEvent{
		EmployeeName:  leave.EmployeeName,
		LeaveTypeName: leave.LeaveTypeName,
		StartDate:     leave.StartDate,
		EndDate:       leave.EndDate,
		Reason:        leave.Reason,
	}
}
