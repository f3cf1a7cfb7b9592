package domain

import "context"

// TicketRepository is the abstraction for any kind of database intended to
// persist Tickets together with their messages.
type TicketRepository interface {
	// AddTicket stores a new ticket.
	AddTicket(ctx context.Context, ticket *Ticket) error
	// GetTicket returns the ticket with the given id.
	GetTicket(ctx context.Context, ticketID string) (*Ticket, error)
	// GetTicketForUser returns the ticket only if it belongs to the user.
	GetTicketForUser(
		ctx context.Context, ticketID string, userID int64,
	) (*Ticket, error)
	// GetTicketsForUser returns all tickets of a user, newest first.
	GetTicketsForUser(ctx context.Context, userID int64) ([]Ticket, error)
	// GetTicketsByStatus returns all tickets in any of the given statuses,
	// oldest first so the queue is served in order.
	GetTicketsByStatus(
		ctx context.Context, statuses ...TicketStatus,
	) ([]Ticket, error)
	// UpdateTicket commits changes to a ticket in a transactional way.
	UpdateTicket(
		ctx context.Context, ticketID string,
		updateFn func(t *Ticket) (*Ticket, error),
	) error
}
