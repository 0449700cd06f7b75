package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var (
	ErrEmptyContent = errors.New("message content is empty")
	ErrSelfMessage  = errors.New("cannot message yourself")
)

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error)
	MarkRead(ctx context.Context, readerID int, counterpartID int) (int64, error)
	UnreadCount(ctx context.Context, ownerID int, counterpartID int) (int, error)
	ListConversation(ctx context.Context, userID int, counterpartID int) ([]models.Message, error)
	ListContacts(ctx context.Context, ownerID int) ([]models.Contact, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage validates and stores a direct message with read_at unset.
func (r *MessageRepo) CreateMessage(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, ErrEmptyContent
	}
	if senderID == receiverID {
		return models.Message{}, ErrSelfMessage
	}

	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, content) VALUES ($1, $2, $3) RETURNING id, sender_id, receiver_id, content, read_at, created_at`, senderID, receiverID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.ReadAt, &msg.CreatedAt)
	return msg, err
}

// MarkRead stamps read_at on every unread message from counterpart to reader
// and returns the number of rows updated. Calling with nothing unread is a
// no-op returning 0.
func (r *MessageRepo) MarkRead(ctx context.Context, readerID int, counterpartID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at = NOW() WHERE receiver_id=$1 AND sender_id=$2 AND read_at IS NULL`, readerID, counterpartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnreadCount returns how many messages from counterpart the owner has not read.
func (r *MessageRepo) UnreadCount(ctx context.Context, ownerID int, counterpartID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE receiver_id=$1 AND sender_id=$2 AND read_at IS NULL`, ownerID, counterpartID)
	return count, err
}

// ListConversation returns the full message history between two users ordered
// by creation time. Clients refetch through here to recover from missed
// realtime events.
func (r *MessageRepo) ListConversation(ctx context.Context, userID int, counterpartID int) ([]models.Message, error) {
	query := `SELECT id, sender_id, receiver_id, content, read_at, created_at
        FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID, counterpartID)
	return msgs, err
}

// ListContacts returns every user the owner has exchanged messages with,
// together with the owner's unread count per counterpart.
func (r *MessageRepo) ListContacts(ctx context.Context, ownerID int) ([]models.Contact, error) {
	query := `SELECT u.id, u.name,
            COUNT(m.id) FILTER (WHERE m.receiver_id=$1 AND m.read_at IS NULL) AS unread
        FROM users u
        JOIN messages m ON (m.sender_id = u.id AND m.receiver_id = $1)
            OR (m.receiver_id = u.id AND m.sender_id = $1)
        WHERE u.id <> $1
        GROUP BY u.id, u.name
        ORDER BY u.name ASC`
	var contacts []models.Contact
	err := r.db.SelectContext(ctx, &contacts, query, ownerID)
	return contacts, err
}
