package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tanmay0711/leaveflow/internal/modules/notification/domain"
	"github.com/tanmay0711/leaveflow/internal/modules/notification/infrastructure/websocket"
)

// ListResult is one page of a recipient's notifications.
type ListResult struct {
	Items   []domain.Notification `json:"data"`
	Total   int                   `json:"total"`
	HasMore bool                  `json:"has_more"`
}

// NotificationService persists notifications and fans them out to connected
// clients. Persistence is the source of truth; the realtime push is a
// best-effort shortcut and its failures never surface to callers.
type NotificationService struct {
	repo domain.NotificationRepository
	hub  *websocket.Hub
}

func NewNotificationService(repo domain.NotificationRepository, hub *websocket.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Create persists a new unread notification and, only once it is durable,
// pushes it to the recipient's live connections. A persistence failure
// aborts before any delivery attempt.
func (s *NotificationService) Create(ctx context.Context, recipientID uuid.UUID, senderID *uuid.UUID, type_ domain.NotificationType, title, message string, data domain.Payload) (*domain.Notification, error) {
	now := time.Now()
	notification := &domain.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        type_,
		Title:       title,
		Message:     message,
		Data:        data,
		Read:        false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if msg, err := json.Marshal(notification); err == nil {
		s.hub.SendToUser(recipientID, msg)
	} else {
		log.Printf("[Notification] marshal for realtime push failed: %v", err)
	}

	return notification, nil
}

// List returns one page, most recent first. Pages are 1-indexed.
func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, page, limit int, unreadOnly bool) (*ListResult, error) {
	if page < 1 || limit < 1 {
		return nil, domain.ErrInvalidPagination
	}
	offset := (page - 1) * limit

	items, total, err := s.repo.ListByRecipient(ctx, recipientID, limit, offset, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &ListResult{
		Items:   items,
		Total:   total,
		HasMore: offset+limit < total,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) (*domain.Notification, error) {
	n, err := s.repo.MarkAsRead(ctx, notificationID, recipientID)
	if err == domain.ErrNotificationNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return n, nil
}

// MarkAllAsRead transitions every unread notification for the recipient.
// Zero affected rows is a success, which makes the call safely repeatable.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return count, nil
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	err := s.repo.Delete(ctx, notificationID, recipientID)
	if err == domain.ErrNotificationNotFound {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	count, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return count, nil
}

// Hub exposes the realtime registry for the websocket subscribe handler.
func (s *NotificationService) Hub() *websocket.Hub {
	return s.hub
}
