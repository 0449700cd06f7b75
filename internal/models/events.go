package models

// Event names carried on realtime channels. Clients bind listeners by these
// exact strings, so they are part of the wire contract.
const (
	EventMessageSent  = "MessageSent"
	EventMessageRead  = "MessageRead"
	EventUserTyping   = "UserTyping"
	EventAnnouncement = "Announcement"
)

// MessageSentEvent wraps the persisted message for realtime delivery.
type MessageSentEvent struct {
	Message Message `json:"message"`
}

// MessageReadEvent acknowledges that reader_id has read everything sent by
// sender_id in their shared conversation.
type MessageReadEvent struct {
	SenderID int `json:"sender_id"`
	ReaderID int `json:"reader_id"`
}

// UserTypingEvent is an ephemeral typing hint. Never persisted.
type UserTypingEvent struct {
	SenderID   int `json:"sender_id"`
	ReceiverID int `json:"receiver_id"`
}

// AnnouncementEvent carries a generic panel notification payload.
type AnnouncementEvent struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}
