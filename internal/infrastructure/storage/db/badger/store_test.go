package dbbadger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
	dbbadger "github.com/tabadex/tabadex-bot/internal/infrastructure/storage/db/badger"
)

func newTestRepoManager(t *testing.T) *dbbadger.RepoManager {
	t.Helper()
	repoManager, err := dbbadger.NewRepoManager("", "fa", nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)
	return repoManager
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	repo := repoManager.UserRepository()

	user, err := repo.GetOrCreateUser(ctx, 100, "alice", "Alice")
	require.NoError(t, err)
	require.Equal(t, int64(100), user.UserID)
	require.Equal(t, "fa", user.LanguageCode)
	require.False(t, user.IsBlocked)

	// Second call must return the stored user, not recreate it.
	again, err := repo.GetOrCreateUser(ctx, 100, "alice2", "Alice")
	require.NoError(t, err)
	require.Equal(t, "alice", again.Username)

	err = repo.UpdateUser(ctx, 100, func(u *domain.User) (*domain.User, error) {
		u.LanguageCode = "en"
		u.IsBlocked = true
		return u, nil
	})
	require.NoError(t, err)

	updated, err := repo.GetUser(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "en", updated.LanguageCode)
	require.True(t, updated.IsBlocked)

	_, err = repo.GetUser(ctx, 999)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetOrCreateUser(ctx, 200, "bob", "Bob")
	require.NoError(t, err)

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	recent, err := repo.CountUsersSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, recent)

	// The blocked user must be excluded from broadcast targets.
	ids, err := repo.GetActiveUserIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{200}, ids)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	repo := repoManager.OrderRepository()

	order := domain.NewOrder(
		"tx-1", 100,
		"btc", "btc", "eth", "eth",
		"0.5", "7.96000000", "bc1qdeposit", "0xrecipient",
	)
	require.NoError(t, repo.AddOrder(ctx, order))
	require.ErrorIs(t, repo.AddOrder(ctx, order), domain.ErrOrderAlreadyExists)

	found, err := repo.GetOrder(ctx, "tx-1")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, found.Status)
	require.Equal(t, "7.96000000", found.ToAmountEstimated)

	_, err = repo.GetOrderForUser(ctx, "tx-1", 100)
	require.NoError(t, err)
	// Another user must not see the order at all.
	_, err = repo.GetOrderForUser(ctx, "tx-1", 200)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	err = repo.UpdateOrder(
		ctx, "tx-1", func(o *domain.Order) (*domain.Order, error) {
			if err := o.AdvanceStatus(domain.OrderStatusCompleted); err != nil {
				return nil, err
			}
			o.SetActualAmount("7.95813311")
			return o, nil
		},
	)
	require.NoError(t, err)

	completed, err := repo.GetOrder(ctx, "tx-1")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCompleted, completed.Status)
	require.Equal(t, "7.95813311", completed.ToAmountActual)

	count, err := repo.CountOrdersByStatus(ctx, domain.OrderStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	second := domain.NewOrder(
		"tx-2", 100,
		"eth", "eth", "usdt", "trx",
		"1", "2480.00000000", "0xdeposit", "Trecipient",
	)
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, repo.AddOrder(ctx, second))

	page, err := repo.GetOrdersForUser(ctx, 100, 1, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "tx-2", page[0].ID, "newest order first")

	// Only the pending order still needs tracking.
	unfinished, err := repo.GetUnfinishedOrders(ctx)
	require.NoError(t, err)
	require.Len(t, unfinished, 1)
	require.Equal(t, "tx-2", unfinished[0].ID)
}

func TestSavedAddressRepository(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	repo := repoManager.SavedAddressRepository()

	cold := domain.NewSavedAddress(100, "cold wallet", "bc1qcold", "btc")
	hot := domain.NewSavedAddress(100, "a hot wallet", "bc1qhot", "btc")
	other := domain.NewSavedAddress(200, "mine", "0xother", "eth")
	for _, a := range []*domain.SavedAddress{cold, hot, other} {
		require.NoError(t, repo.AddAddress(ctx, a))
	}

	addresses, err := repo.GetAddressesForUser(ctx, 100)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	require.Equal(t, "a hot wallet", addresses[0].Name, "sorted by name")

	// Deleting someone else's address must fail and leave it in place.
	err = repo.DeleteAddress(ctx, other.ID, 100)
	require.ErrorIs(t, err, domain.ErrAddressNotFound)

	require.NoError(t, repo.DeleteAddress(ctx, cold.ID, 100))
	addresses, err = repo.GetAddressesForUser(ctx, 100)
	require.NoError(t, err)
	require.Len(t, addresses, 1)

	err = repo.DeleteAddress(ctx, cold.ID, 100)
	require.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestTicketRepository(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	repo := repoManager.TicketRepository()

	first := domain.NewTicket(100, "stuck order", "my order is stuck")
	second := domain.NewTicket(100, "wrong amount", "received less")
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, repo.AddTicket(ctx, first))
	require.NoError(t, repo.AddTicket(ctx, second))

	_, err := repo.GetTicketForUser(ctx, first.ID, 200)
	require.ErrorIs(t, err, domain.ErrTicketNotFound)

	mine, err := repo.GetTicketsForUser(ctx, 100)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, second.ID, mine[0].ID, "newest ticket first")

	err = repo.UpdateTicket(
		ctx, first.ID, func(t *domain.Ticket) (*domain.Ticket, error) {
			if err := t.Reply(1, "we are on it", true); err != nil {
				return nil, err
			}
			return t, nil
		},
	)
	require.NoError(t, err)

	answered, err := repo.GetTicket(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusAnswered, answered.Status)
	require.Len(t, answered.Messages, 2)

	// The admin queue serves open tickets oldest first.
	queue, err := repo.GetTicketsByStatus(
		ctx, domain.TicketStatusOpen, domain.TicketStatusPendingUserReply,
	)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, second.ID, queue[0].ID)

	_, err = repo.GetTicket(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestSettingRepository(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	repo := repoManager.SettingRepository()

	value, err := repo.GetSetting(
		ctx, domain.MarkupPercentageKey, domain.DefaultMarkupPercentage,
	)
	require.NoError(t, err)
	require.Equal(t, "0.5", value)

	require.NoError(t, repo.SetSetting(ctx, domain.MarkupPercentageKey, "1.25"))
	require.NoError(t, repo.SetSetting(ctx, domain.MarkupPercentageKey, "2"))

	value, err = repo.GetSetting(
		ctx, domain.MarkupPercentageKey, domain.DefaultMarkupPercentage,
	)
	require.NoError(t, err)
	require.Equal(t, "2", value)
}
