package domain

import (
	"context"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	// ListByRecipient returns a page ordered by created_at descending,
	// alongside the exact total row count for the same filter.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int, unreadOnly bool) ([]Notification, int, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) (*Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, notificationID, recipientID uuid.UUID) error
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
}
