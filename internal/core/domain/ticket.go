package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus tracks whose turn it is on a support ticket.
type TicketStatus string

const (
	// TicketStatusOpen means the ticket awaits a first admin answer.
	TicketStatusOpen TicketStatus = "open"
	// TicketStatusAnswered means an admin replied last.
	TicketStatusAnswered TicketStatus = "answered"
	// TicketStatusPendingUserReply means the user replied last.
	TicketStatusPendingUserReply TicketStatus = "pending_user_reply"
	// TicketStatusClosed means the conversation is over.
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is a support conversation between a user and the admins.
type Ticket struct {
	ID        string
	UserID    int64
	Title     string
	Status    TicketStatus
	Messages  []TicketMessage
	CreatedAt time.Time
}

// TicketMessage is one message inside a ticket.
type TicketMessage struct {
	SenderID        int64
	Text            string
	IsAdminResponse bool
	CreatedAt       time.Time
}

// NewTicket opens a ticket with its initial user message.
func NewTicket(userID int64, title, initialMessage string) *Ticket {
	now := time.Now()
	return &Ticket{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  title,
		Status: TicketStatusOpen,
		Messages: []TicketMessage{{
			SenderID:  userID,
			Text:      initialMessage,
			CreatedAt: now,
		}},
		CreatedAt: now,
	}
}

// Reply appends a message and flips the status to reflect whose turn it is.
// Replying on a closed ticket is not allowed.
func (t *Ticket) Reply(senderID int64, text string, isAdmin bool) error {
	if t.Status == TicketStatusClosed {
		return ErrTicketClosed
	}
	t.Messages = append(t.Messages, TicketMessage{
		SenderID:        senderID,
		Text:            text,
		IsAdminResponse: isAdmin,
		CreatedAt:       time.Now(),
	})
	if isAdmin {
		t.Status = TicketStatusAnswered
	} else {
		t.Status = TicketStatusPendingUserReply
	}
	return nil
}

// Close marks the ticket closed. Closing twice is a no-op.
func (t *Ticket) Close() {
	t.Status = TicketStatusClosed
}
