package models

import (
	"time"

	"messaging-service/internal/channels"
)

// Notification is a realtime event bound to a fixed set of target channels.
// Each kind declares its own targets statically instead of routing through a
// generic dispatcher.
type Notification interface {
	EventName() string
	Channels() []string
	Payload() any
}

// Persistable marks notifications that also get a durable database copy for
// the owning user.
type Persistable interface {
	Notification
	Record() NotificationRecord
}

// NotificationRecord is a stored notification row.
type NotificationRecord struct {
	ID        int        `db:"id" json:"id"`
	UserID    int        `db:"user_id" json:"user_id"`
	Message   string     `db:"message" json:"message"`
	URL       string     `db:"url" json:"url"`
	ReadAt    *time.Time `db:"read_at" json:"read_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// MessageSentNotification fans a new message out to the shared conversation
// channel and to the receiver's personal channel, so a contact list that is
// not watching this conversation can still bump its badge.
type MessageSentNotification struct {
	Msg Message
}

func (n MessageSentNotification) EventName() string { return EventMessageSent }

func (n MessageSentNotification) Channels() []string {
	return []string{
		channels.Conversation(n.Msg.SenderID, n.Msg.ReceiverID),
		channels.User(n.Msg.ReceiverID),
	}
}

func (n MessageSentNotification) Payload() any { return MessageSentEvent{Message: n.Msg} }

// MessageReadNotification tells the counterpart their messages were read.
// Conversation channel only.
type MessageReadNotification struct {
	SenderID int
	ReaderID int
}

func (n MessageReadNotification) EventName() string { return EventMessageRead }

func (n MessageReadNotification) Channels() []string {
	return []string{channels.Conversation(n.SenderID, n.ReaderID)}
}

func (n MessageReadNotification) Payload() any {
	return MessageReadEvent{SenderID: n.SenderID, ReaderID: n.ReaderID}
}

// UserTypingNotification is the ephemeral typing hint. Conversation channel
// only, at-most-once.
type UserTypingNotification struct {
	SenderID   int
	ReceiverID int
}

func (n UserTypingNotification) EventName() string { return EventUserTyping }

func (n UserTypingNotification) Channels() []string {
	return []string{channels.Conversation(n.SenderID, n.ReceiverID)}
}

func (n UserTypingNotification) Payload() any {
	return UserTypingEvent{SenderID: n.SenderID, ReceiverID: n.ReceiverID}
}

// AnnouncementNotification is a generic panel notification: broadcast to the
// recipient's personal channel and persisted for later retrieval.
type AnnouncementNotification struct {
	UserID  int
	Message string
	URL     string
}

func (n AnnouncementNotification) EventName() string { return EventAnnouncement }

func (n AnnouncementNotification) Channels() []string {
	return []string{channels.User(n.UserID)}
}

func (n AnnouncementNotification) Payload() any {
	return AnnouncementEvent{Message: n.Message, URL: n.URL}
}

func (n AnnouncementNotification) Record() NotificationRecord {
	return NotificationRecord{UserID: n.UserID, Message: n.Message, URL: n.URL}
}
