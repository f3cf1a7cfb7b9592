package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
)

// SupportService is the user side of the ticketing system.
type SupportService interface {
	CreateTicket(
		ctx context.Context, userID int64, title, message string,
	) (*domain.Ticket, error)
	GetTickets(ctx context.Context, userID int64) ([]domain.Ticket, error)
	GetTicket(
		ctx context.Context, userID int64, ticketID string,
	) (*domain.Ticket, error)
	ReplyTicket(
		ctx context.Context, userID int64, ticketID, text string,
	) error
	CloseTicket(ctx context.Context, userID int64, ticketID string) error
}

type supportService struct {
	ticketRepository domain.TicketRepository
}

func NewSupportService(ticketRepository domain.TicketRepository) SupportService {
	return &supportService{ticketRepository: ticketRepository}
}

func (s *supportService) CreateTicket(
	ctx context.Context, userID int64, title, message string,
) (*domain.Ticket, error) {
	ticket := domain.NewTicket(userID, title, message)
	if err := s.ticketRepository.AddTicket(ctx, ticket); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user": userID, "ticket": ticket.ID,
	}).Info("support ticket opened")
	return ticket, nil
}

func (s *supportService) GetTickets(
	ctx context.Context, userID int64,
) ([]domain.Ticket, error) {
	return s.ticketRepository.GetTicketsForUser(ctx, userID)
}

func (s *supportService) GetTicket(
	ctx context.Context, userID int64, ticketID string,
) (*domain.Ticket, error) {
	return s.ticketRepository.GetTicketForUser(ctx, ticketID, userID)
}

func (s *supportService) ReplyTicket(
	ctx context.Context, userID int64, ticketID, text string,
) error {
	// Ownership is checked before touching the ticket.
	if _, err := s.ticketRepository.GetTicketForUser(
		ctx, ticketID, userID,
	); err != nil {
		return err
	}
	return s.ticketRepository.UpdateTicket(
		ctx, ticketID, func(t *domain.Ticket) (*domain.Ticket, error) {
			if err := t.Reply(userID, text, false); err != nil {
				return nil, err
			}
			return t, nil
		},
	)
}

func (s *supportService) CloseTicket(
	ctx context.Context, userID int64, ticketID string,
) error {
	if _, err := s.ticketRepository.GetTicketForUser(
		ctx, ticketID, userID,
	); err != nil {
		return err
	}
	return s.ticketRepository.UpdateTicket(
		ctx, ticketID, func(t *domain.Ticket) (*domain.Ticket, error) {
			t.Close()
			return t, nil
		},
	)
}
