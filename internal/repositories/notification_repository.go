package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// NotificationRepository stores durable notification copies.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, record models.NotificationRecord) (models.NotificationRecord, error)
	ListNotifications(ctx context.Context, userID int) ([]models.NotificationRecord, error)
	MarkNotificationsRead(ctx context.Context, userID int) (int64, error)
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// CreateNotification inserts a notification row for the user.
func (r *NotificationRepo) CreateNotification(ctx context.Context, record models.NotificationRecord) (models.NotificationRecord, error) {
	var stored models.NotificationRecord
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notifications (user_id, message, url) VALUES ($1, $2, $3) RETURNING id, user_id, message, url, read_at, created_at`, record.UserID, record.Message, record.URL).
		Scan(&stored.ID, &stored.UserID, &stored.Message, &stored.URL, &stored.ReadAt, &stored.CreatedAt)
	return stored, err
}

// ListNotifications returns the user's notifications, newest first.
func (r *NotificationRepo) ListNotifications(ctx context.Context, userID int) ([]models.NotificationRecord, error) {
	var records []models.NotificationRecord
	err := r.db.SelectContext(ctx, &records, `SELECT id, user_id, message, url, read_at, created_at FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	return records, err
}

// MarkNotificationsRead stamps every unread notification for the user.
func (r *NotificationRepo) MarkNotificationsRead(ctx context.Context, userID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read_at = NOW() WHERE user_id=$1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
