package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeLeaveApproved    NotificationType = "leave_approved"
	NotificationTypeLeaveRejected    NotificationType = "leave_rejected"
	NotificationTypeLeaveCancelled   NotificationType = "leave_cancelled"
	NotificationTypeRequestSubmitted NotificationType = "request_submitted"
	NotificationTypeSystem           NotificationType = "system"
)

// Payload is the opaque key->value data attached by the producer. Stored as
// JSONB; the schema is owned by whoever created the notification.
type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *Payload) Scan(src any) error {
	if src == nil {
		*p = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported payload type %T", src)
	}
	return json.Unmarshal(raw, p)
}

// Sender is the embedded view of the user a notification originated from.
// Nil for system-generated notifications.
type Sender struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	ProfilePicture *string   `json:"profile_picture" db:"profile_picture"`
}

type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID uuid.UUID        `json:"-" db:"recipient_id"`
	SenderID    *uuid.UUID       `json:"-" db:"sender_id"`
	Type        NotificationType `json:"type" db:"type"`
	Title       string           `json:"title" db:"title"`
	Message     string           `json:"message" db:"message"`
	Data        Payload          `json:"data" db:"data"`
	Read        bool             `json:"read" db:"read"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"-" db:"updated_at"`

	Sender *Sender `json:"sender" db:"-"`
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidPagination    = errors.New("page and limit must be positive")
	ErrPersistence          = errors.New("notification store unavailable")
)
