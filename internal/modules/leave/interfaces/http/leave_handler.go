package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tanmay0711/leaveflow/internal/gateway/middleware"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/application"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/domain"
)

const dateLayout = "2006-01-02"

type LeaveHandler struct {
	service *application.LeaveService
}

func NewLeaveHandler(service *application.LeaveService) *LeaveHandler {
	return &LeaveHandler{service: service}
}

type submitBody struct {
	EmployeeName  string    `json:"employee_name"`
	ApproverID    uuid.UUID `json:"approver_id"`
	LeaveTypeName string    `json:"leave_type_name"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Reason        string    `json:"reason"`
}

func (h *LeaveHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(dateLayout, body.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dateLayout, body.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	leave, err := h.service.Submit(r.Context(), application.SubmitRequest{
		EmployeeID:    userID,
		EmployeeName:  body.EmployeeName,
		ApproverID:    body.ApproverID,
		LeaveTypeName: body.LeaveTypeName,
		StartDate:     start,
		EndDate:       end,
		Reason:        body.Reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDateRange) {
			http.Error(w, "end date must not be before start date", http.StatusBadRequest)
			return
		}
		log.Printf("Submit: service error: %v", err)
		http.Error(w, "failed to submit leave request", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(leave)
}

func (h *LeaveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid leave id", http.StatusBadRequest)
		return
	}
	leave, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLeaveNotFound) {
			http.Error(w, "leave request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch leave request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leave)
}

func (h *LeaveHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *LeaveHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

func (h *LeaveHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

type rescheduleBody struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (h *LeaveHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid leave id", http.StatusBadRequest)
		return
	}

	var body rescheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(dateLayout, body.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dateLayout, body.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	leave, err := h.service.Reschedule(r.Context(), id, start, end, body.Reason)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leave)
}

func (h *LeaveHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, actor uuid.UUID) (*domain.LeaveRequest, error)) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid leave id", http.StatusBadRequest)
		return
	}
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	leave, err := op(r.Context(), id, userID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leave)
}

func (h *LeaveHandler) writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLeaveNotFound):
		http.Error(w, "leave request not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, "leave request is not in a state that allows this action", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidDateRange):
		http.Error(w, "end date must not be before start date", http.StatusBadRequest)
	default:
		log.Printf("leave transition error: %v", err)
		http.Error(w, "failed to update leave request", http.StatusInternalServerError)
	}
}
