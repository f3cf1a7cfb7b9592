package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
)

func newTestOrder() *domain.Order {
	return domain.NewOrder(
		"tx-1", 42,
		"btc", "bitcoin", "eth", "ethereum",
		"1.5", "23.45678901", "bc1qdeposit", "0xrecipient",
	)
}

func TestNewOrderStartsPending(t *testing.T) {
	order := newTestOrder()
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.Empty(t, order.ToAmountActual)
	require.False(t, order.Status.IsFinal())
}

func TestAdvanceStatus(t *testing.T) {
	order := newTestOrder()

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusWaiting,
		domain.OrderStatusConfirming,
		domain.OrderStatusExchanging,
		domain.OrderStatusSending,
		domain.OrderStatusCompleted,
	} {
		require.NoError(t, order.AdvanceStatus(status))
		require.Equal(t, status, order.Status)
	}

	err := order.AdvanceStatus(domain.OrderStatusRefunded)
	require.ErrorIs(t, err, domain.ErrOrderStatusFinal)
	require.Equal(t, domain.OrderStatusCompleted, order.Status)
}

func TestTicketReply(t *testing.T) {
	ticket := domain.NewTicket(42, "stuck order", "my deposit never arrived")
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Len(t, ticket.Messages, 1)

	require.NoError(t, ticket.Reply(7, "looking into it", true))
	require.Equal(t, domain.TicketStatusAnswered, ticket.Status)

	require.NoError(t, ticket.Reply(42, "thanks, still waiting", false))
	require.Equal(t, domain.TicketStatusPendingUserReply, ticket.Status)

	ticket.Close()
	require.Equal(t, domain.TicketStatusClosed, ticket.Status)
	require.ErrorIs(
		t, ticket.Reply(42, "hello?", false), domain.ErrTicketClosed,
	)
	require.Len(t, ticket.Messages, 3)
}
