package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tanmay0711/leaveflow/internal/modules/notification/domain"
)

type PgNotificationRepository struct {
	db *sqlx.DB
}

func NewPgNotificationRepository(db *sqlx.DB) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

// notificationRow carries the LEFT JOIN columns for the optional sender.
type notificationRow struct {
	domain.Notification
	SenderUID     *uuid.UUID `db:"sender_uid"`
	SenderName    *string    `db:"sender_name"`
	SenderEmail   *string    `db:"sender_email"`
	SenderPicture *string    `db:"sender_picture"`
}

func (row notificationRow) toDomain() domain.Notification {
	n := row.Notification
	if row.SenderUID != nil {
		n.Sender = &domain.Sender{
			ID:             *row.SenderUID,
			Name:           derefOr(row.SenderName, ""),
			Email:          derefOr(row.SenderEmail, ""),
			ProfilePicture: row.SenderPicture,
		}
	}
	return n
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// Create inserts the notification and materializes its sender, so the
// record handed back matches the wire shape ListByRecipient produces. The
// realtime push marshals this record directly.
func (r *PgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, data, read, created_at, updated_at)
		VALUES (:id, :recipient_id, :sender_id, :type, :title, :message, :data, :read, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return err
	}

	if n.SenderID == nil {
		return nil
	}
	var sender domain.Sender
	err := r.db.GetContext(ctx, &sender,
		`SELECT id, name, email, profile_picture FROM users WHERE id = $1`, *n.SenderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	n.Sender = &sender
	return nil
}

func (r *PgNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int, unreadOnly bool) ([]domain.Notification, int, error) {
	filter := ``
	if unreadOnly {
		filter = ` AND n.read = FALSE`
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notifications n WHERE n.recipient_id = $1` + filter
	if err := r.db.GetContext(ctx, &total, countQuery, recipientID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT n.id, n.recipient_id, n.sender_id, n.type, n.title, n.message, n.data, n.read, n.created_at, n.updated_at,
		       u.id AS sender_uid, u.name AS sender_name, u.email AS sender_email, u.profile_picture AS sender_picture
		FROM notifications n
		LEFT JOIN users u ON u.id = n.sender_id
		WHERE n.recipient_id = $1` + filter + `
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, recipientID, limit, offset); err != nil {
		return nil, 0, err
	}

	notifications := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toDomain())
	}
	return notifications, total, nil
}

// MarkAsRead flips read to true for the recipient's own notification.
// The recipient scope in the WHERE clause is what prevents cross-tenant
// mutation; a miss on either column reports not found.
func (r *PgNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET read = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, recipient_id, sender_id, type, title, message, data, read, created_at, updated_at
	`
	var n domain.Notification
	err := r.db.QueryRowxContext(ctx, query, notificationID, recipientID).StructScan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PgNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET read = TRUE, updated_at = NOW()
		WHERE recipient_id = $1 AND read = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PgNotificationRepository) Delete(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	query := `
		DELETE FROM notifications
		WHERE id = $1 AND recipient_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, notificationID, recipientID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND read = FALSE
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, recipientID)
	return count, err
}
