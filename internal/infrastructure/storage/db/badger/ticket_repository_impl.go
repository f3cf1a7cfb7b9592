package dbbadger

import (
	"context"
	"errors"

	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type ticketRepositoryImpl struct {
	store *badgerhold.Store
}

func newTicketRepository(store *badgerhold.Store) domain.TicketRepository {
	return &ticketRepositoryImpl{store: store}
}

func (r *ticketRepositoryImpl) AddTicket(
	ctx context.Context, ticket *domain.Ticket,
) error {
	return r.store.Insert(ticket.ID, ticket)
}

func (r *ticketRepositoryImpl) GetTicket(
	ctx context.Context, ticketID string,
) (*domain.Ticket, error) {
	return r.getTicket(ticketID)
}

func (r *ticketRepositoryImpl) GetTicketForUser(
	ctx context.Context, ticketID string, userID int64,
) (*domain.Ticket, error) {
	ticket, err := r.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, nil
}

func (r *ticketRepositoryImpl) GetTicketsForUser(
	ctx context.Context, userID int64,
) ([]domain.Ticket, error) {
	query := badgerhold.Where("UserID").Eq(userID).
		SortBy("CreatedAt").Reverse()

	var tickets []domain.Ticket
	if err := r.store.Find(&tickets, query); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepositoryImpl) GetTicketsByStatus(
	ctx context.Context, statuses ...domain.TicketStatus,
) ([]domain.Ticket, error) {
	in := make([]interface{}, 0, len(statuses))
	for _, s := range statuses {
		in = append(in, s)
	}
	query := badgerhold.Where("Status").In(in...).SortBy("CreatedAt")

	var tickets []domain.Ticket
	if err := r.store.Find(&tickets, query); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepositoryImpl) UpdateTicket(
	ctx context.Context, ticketID string,
	updateFn func(t *domain.Ticket) (*domain.Ticket, error),
) error {
	ticket, err := r.getTicket(ticketID)
	if err != nil {
		return err
	}

	updated, err := updateFn(ticket)
	if err != nil {
		return err
	}

	return r.store.Update(ticketID, updated)
}

func (r *ticketRepositoryImpl) getTicket(
	ticketID string,
) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.store.Get(ticketID, &ticket); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}
