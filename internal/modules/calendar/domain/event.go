package domain

import (
	"errors"
	"time"
)

// LeaveEvent is the calendar-facing view of an approved leave. StartDate and
// EndDate are calendar-inclusive: EndDate is the last day of leave. The
// provider's exclusive end-date convention is translated at the adapter
// boundary, never here.
type LeaveEvent struct {
	EmployeeName  string
	LeaveTypeName string
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
}

// StoredCredentials is the persisted OAuth credential pair, so the adapter
// can operate unattended across restarts.
type StoredCredentials struct {
	Provider     string    `db:"provider"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	Expiry       time.Time `db:"expiry"`
	UpdatedAt    time.Time `db:"updated_at"`
}

var (
	// ErrNotAuthorized: no credentials present, calendar operations cannot proceed.
	ErrNotAuthorized = errors.New("calendar: not authorized")
	// ErrMissingRefreshToken: a refresh credential is mandatory for unattended operation.
	ErrMissingRefreshToken = errors.New("calendar: credential set has no refresh token")
	// ErrAuthExchange: the provider rejected the authorization code.
	ErrAuthExchange = errors.New("calendar: authorization code exchange failed")
	// ErrRefreshFailed: the provider rejected the refresh token. Terminal
	// until a human re-authorizes; never retried automatically.
	ErrRefreshFailed = errors.New("calendar: token refresh rejected, re-authorization required")
	// ErrExternalAPI: the provider rejected a calendar operation.
	ErrExternalAPI = errors.New("calendar: provider request failed")
	// ErrNoStoredCredentials: nothing persisted yet.
	ErrNoStoredCredentials = errors.New("calendar: no stored credentials")
)
