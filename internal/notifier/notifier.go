package notifier

import (
	"context"

	"go.uber.org/zap"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

// Publisher is the realtime transport notifications go out on. Delivery is
// fire-and-forget: a failed publish degrades to "no realtime update" and the
// persisted rows remain the source of truth.
type Publisher interface {
	Publish(ctx context.Context, channel string, event string, payload any) error
}

// Notifier dispatches typed notifications to their declared channels.
type Notifier struct {
	publisher Publisher
	store     repositories.NotificationRepository
	logger    *zap.Logger
}

// New constructs a Notifier.
func New(publisher Publisher, store repositories.NotificationRepository, logger *zap.Logger) *Notifier {
	return &Notifier{publisher: publisher, store: store, logger: logger}
}

// MessageSent announces a freshly stored message on the shared conversation
// channel and on the receiver's personal channel, so a contact list not
// watching this conversation can still bump its badge.
func (n *Notifier) MessageSent(ctx context.Context, msg models.Message) {
	n.publish(ctx, models.MessageSentNotification{Msg: msg})
}

// MessageRead tells the counterpart that the reader has seen their messages.
// Callers must only invoke this after a mark-read that actually updated rows.
func (n *Notifier) MessageRead(ctx context.Context, senderID, readerID int) {
	n.publish(ctx, models.MessageReadNotification{SenderID: senderID, ReaderID: readerID})
}

// UserTyping emits the ephemeral typing hint on the conversation channel.
func (n *Notifier) UserTyping(ctx context.Context, senderID, receiverID int) {
	n.publish(ctx, models.UserTypingNotification{SenderID: senderID, ReceiverID: receiverID})
}

// Announce stores a durable notification for the user and broadcasts it on
// their personal channel. The store write is the durability boundary: a
// failure there aborts, a failed broadcast does not.
func (n *Notifier) Announce(ctx context.Context, userID int, message, url string) error {
	notification := models.AnnouncementNotification{UserID: userID, Message: message, URL: url}
	if _, err := n.store.CreateNotification(ctx, notification.Record()); err != nil {
		return err
	}
	n.publish(ctx, notification)
	return nil
}

func (n *Notifier) publish(ctx context.Context, notification models.Notification) {
	observability.IncNotification(notification.EventName())
	for _, channel := range notification.Channels() {
		if err := n.publisher.Publish(ctx, channel, notification.EventName(), notification.Payload()); err != nil {
			n.logger.Warn("notification publish failed",
				zap.String("event", notification.EventName()),
				zap.String("channel", channel),
				zap.Error(err))
		}
	}
}
