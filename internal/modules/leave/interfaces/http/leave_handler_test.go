package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanmay0711/leaveflow/internal/gateway/middleware"
	calendardomain "github.com/tanmay0711/leaveflow/internal/modules/calendar/domain"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/application"
	"github.com/tanmay0711/leaveflow/internal/modules/leave/domain"
	leavehttp "github.com/tanmay0711/leaveflow/internal/modules/leave/interfaces/http"
	notificationdomain "github.com/tanmay0711/leaveflow/internal/modules/notification/domain"
)

type memLeaveRepo struct {
	leaves map[uuid.UUID]*domain.LeaveRequest
}

func newMemLeaveRepo() *memLeaveRepo {
	return &memLeaveRepo{leaves: map[uuid.UUID]*domain.LeaveRequest{}}
}

func (m *memLeaveRepo) Create(_ context.Context, leave *domain.LeaveRequest) error {
	cp := *leave
	m.leaves[leave.ID] = &cp
	return nil
}

func (m *memLeaveRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.LeaveRequest, error) {
	leave, ok := m.leaves[id]
	if !ok {
		return nil, domain.ErrLeaveNotFound
	}
	cp := *leave
	return &cp, nil
}

func (m *memLeaveRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.LeaveStatus) error {
	leave, ok := m.leaves[id]
	if !ok {
		return domain.ErrLeaveNotFound
	}
	leave.Status = status
	return nil
}

func (m *memLeaveRepo) UpdateDates(_ context.Context, id uuid.UUID, updated *domain.LeaveRequest) error {
	leave, ok := m.leaves[id]
	if !ok {
		return domain.ErrLeaveNotFound
	}
	leave.StartDate = updated.StartDate
	leave.EndDate = updated.EndDate
	leave.Reason = updated.Reason
	return nil
}

func (m *memLeaveRepo) SetCalendarEventID(_ context.Context, id uuid.UUID, eventID *string) error {
	leave, ok := m.leaves[id]
	if !ok {
		return domain.ErrLeaveNotFound
	}
	leave.CalendarEventID = eventID
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Create(_ context.Context, recipientID uuid.UUID, _ *uuid.UUID, _ notificationdomain.NotificationType, _, _ string, _ notificationdomain.Payload) (*notificationdomain.Notification, error) {
	return &notificationdomain.Notification{ID: uuid.New(), RecipientID: recipientID}, nil
}

type nopCalendar struct{}

func (nopCalendar) IsAuthorized() bool { return false }
func (nopCalendar) CreateLeaveEvent(_ context.Context, _ calendardomain.LeaveEvent) (string, error) {
	return "", nil
}
func (nopCalendar) UpdateLeaveEvent(_ context.Context, _ string, _ calendardomain.LeaveEvent) error {
	return nil
}
func (nopCalendar) DeleteLeaveEvent(_ context.Context, _ string) error { return nil }

func newHandler() (*leavehttp.LeaveHandler, *memLeaveRepo) {
	repo := newMemLeaveRepo()
	service := application.NewLeaveService(repo, nopNotifier{}, nopCalendar{})
	return leavehttp.NewLeaveHandler(service), repo
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserId, userID)
	return req.WithContext(ctx)
}

func seedLeave(repo *memLeaveRepo, status domain.LeaveStatus) *domain.LeaveRequest {
	leave := &domain.LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    uuid.New(),
		EmployeeName:  "Asha Rao",
		ApproverID:    uuid.New(),
		LeaveTypeName: "Annual Leave",
		Status:        status,
	}
	repo.leaves[leave.ID] = leave
	return leave
}

func TestSubmit(t *testing.T) {
	handler, repo := newHandler()
	employeeID := uuid.New()

	body := `{
		"employee_name": "Asha Rao",
		"approver_id": "` + uuid.NewString() + `",
		"leave_type_name": "Annual Leave",
		"start_date": "2024-03-04",
		"end_date": "2024-03-06",
		"reason": "trip"
	}`
	w := httptest.NewRecorder()
	handler.Submit(w, authedRequest(http.MethodPost, "/leaves", body, employeeID))

	require.Equal(t, http.StatusCreated, w.Code)
	var leave domain.LeaveRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leave))
	assert.Equal(t, employeeID, leave.EmployeeID)
	assert.Equal(t, domain.LeaveStatusPending, leave.Status)
	assert.Contains(t, repo.leaves, leave.ID)
}

func TestSubmit_BadDate(t *testing.T) {
	handler, _ := newHandler()

	body := `{"start_date": "04-03-2024", "end_date": "2024-03-06"}`
	w := httptest.NewRecorder()
	handler.Submit(w, authedRequest(http.MethodPost, "/leaves", body, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_EndBeforeStart(t *testing.T) {
	handler, _ := newHandler()

	body := `{"start_date": "2024-03-06", "end_date": "2024-03-04"}`
	w := httptest.NewRecorder()
	handler.Submit(w, authedRequest(http.MethodPost, "/leaves", body, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_Unauthorized(t *testing.T) {
	handler, _ := newHandler()

	req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.Submit(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGet(t *testing.T) {
	handler, repo := newHandler()
	leave := seedLeave(repo, domain.LeaveStatusPending)

	req := authedRequest(http.MethodGet, "/leaves/"+leave.ID.String(), "", uuid.New())
	req.SetPathValue("id", leave.ID.String())
	w := httptest.NewRecorder()
	handler.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.LeaveRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, leave.ID, got.ID)
}

func TestGet_NotFound(t *testing.T) {
	handler, _ := newHandler()

	req := authedRequest(http.MethodGet, "/leaves/x", "", uuid.New())
	req.SetPathValue("id", uuid.NewString())
	w := httptest.NewRecorder()
	handler.Get(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApprove(t *testing.T) {
	handler, repo := newHandler()
	leave := seedLeave(repo, domain.LeaveStatusPending)

	req := authedRequest(http.MethodPost, "/leaves/"+leave.ID.String()+"/approve", "", leave.ApproverID)
	req.SetPathValue("id", leave.ID.String())
	w := httptest.NewRecorder()
	handler.Approve(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.LeaveRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.LeaveStatusApproved, got.Status)
}

func TestApprove_Conflict(t *testing.T) {
	handler, repo := newHandler()
	leave := seedLeave(repo, domain.LeaveStatusApproved)

	req := authedRequest(http.MethodPost, "/leaves/x/approve", "", leave.ApproverID)
	req.SetPathValue("id", leave.ID.String())
	w := httptest.NewRecorder()
	handler.Approve(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancel(t *testing.T) {
	handler, repo := newHandler()
	leave := seedLeave(repo, domain.LeaveStatusApproved)

	req := authedRequest(http.MethodPost, "/leaves/x/cancel", "", leave.EmployeeID)
	req.SetPathValue("id", leave.ID.String())
	w := httptest.NewRecorder()
	handler.Cancel(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.LeaveStatusCancelled, repo.leaves[leave.ID].Status)
}

func TestReschedule(t *testing.T) {
	handler, repo := newHandler()
	leave := seedLeave(repo, domain.LeaveStatusPending)

	body := `{"start_date": "2024-04-01", "end_date": "2024-04-03", "reason": "moved"}`
	req := authedRequest(http.MethodPatch, "/leaves/x/dates", body, leave.EmployeeID)
	req.SetPathValue("id", leave.ID.String())
	w := httptest.NewRecorder()
	handler.Reschedule(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "moved", repo.leaves[leave.ID].Reason)
}

func TestReschedule_NotFound(t *testing.T) {
	handler, _ := newHandler()

	body := `{"start_date": "2024-04-01", "end_date": "2024-04-03"}`
	req := authedRequest(http.MethodPatch, "/leaves/x/dates", body, uuid.New())
	req.SetPathValue("id", uuid.NewString())
	w := httptest.NewRecorder()
	handler.Reschedule(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
