// Package contactlist implements the client-side contact list projection:
// per-contact unread badges driven by realtime events. Event handling is
// single-threaded; callers apply one event to completion before the next.
package contactlist

import "messaging-service/internal/models"

// List holds unread counters for one user's contact list. The zero contact
// id means no conversation is open.
type List struct {
	self   int
	active int
	unread map[int]int
}

// New builds an empty list owned by the given user.
func New(self int) *List {
	return &List{self: self, unread: make(map[int]int)}
}

// Load seeds counters from a server-side contact fetch, replacing any local
// state. Used on startup and on reconnect to recover from missed events.
func (l *List) Load(contacts []models.Contact) {
	l.unread = make(map[int]int, len(contacts))
	for _, contact := range contacts {
		if contact.Unread > 0 {
			l.unread[contact.ID] = contact.Unread
		}
	}
}

// ApplyMessageSent bumps the sender's badge when the message is addressed to
// this user and that conversation is not the open one. Messages for the open
// conversation are rendered directly and read immediately, so no badge.
func (l *List) ApplyMessageSent(event models.MessageSentEvent) {
	msg := event.Message
	if msg.ReceiverID != l.self {
		return
	}
	if msg.SenderID == l.active {
		return
	}
	l.unread[msg.SenderID]++
}

// ApplyMessageRead clears a contact's badge when this user's read receipt
// arrives, which covers reads performed in another tab or device.
func (l *List) ApplyMessageRead(event models.MessageReadEvent) {
	if event.ReaderID != l.self {
		return
	}
	delete(l.unread, event.SenderID)
}

// Select opens a contact's conversation and optimistically zeroes its badge.
// The caller pairs this with a server mark-read call; the reset is not rolled
// back if that call fails.
func (l *List) Select(contactID int) {
	l.active = contactID
	delete(l.unread, contactID)
}

// Deselect closes the open conversation.
func (l *List) Deselect() {
	l.active = 0
}

// Active returns the contact whose conversation is open, or zero.
func (l *List) Active() int {
	return l.active
}

// Unread returns the badge count for a contact.
func (l *List) Unread(contactID int) int {
	return l.unread[contactID]
}

// TotalUnread sums all badges.
func (l *List) TotalUnread() int {
	total := 0
	for _, count := range l.unread {
		total += count
	}
	return total
}
