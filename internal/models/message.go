package models

import "time"

// Message represents a direct message between two residents. ReadAt stays
// nil until the receiver opens the conversation.
type Message struct {
	ID         int        `db:"id" json:"id"`
	SenderID   int        `db:"sender_id" json:"sender_id"`
	ReceiverID int        `db:"receiver_id" json:"receiver_id"`
	Content    string     `db:"content" json:"content"`
	ReadAt     *time.Time `db:"read_at" json:"read_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	Sender     *UserInfo  `json:"sender,omitempty"`
}

// UserInfo carries the display metadata attached to outgoing message events.
type UserInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Contact is the per-counterpart projection backing the contact list.
type Contact struct {
	ID     int    `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Unread int    `db:"unread" json:"unread"`
}
