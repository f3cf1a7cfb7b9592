package application_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tabadex/tabadex-bot/internal/core/application"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/tabadex/tabadex-bot/pkg/swapzone"
)

var testCatalog = []swapzone.Currency{
	{Ticker: "btc", Name: "Bitcoin", Networks: []string{"bitcoin"}},
	{Ticker: "eth", Name: "Ethereum", Networks: []string{"ethereum", "arbitrum"}},
	{Ticker: "usdt", Name: "Tether", Networks: []string{"ethereum", "tron", "bsc"}},
	{Ticker: "doge", Name: "Dogecoin", Networks: []string{"dogecoin"}},
}

// stubSwapClient implements ports.SwapClient with overridable calls.
type stubSwapClient struct {
	mtx          sync.Mutex
	minMaxCalls  int
	rateCalls    int
	createCalls  int
	currenciesFn func() ([]swapzone.Currency, error)
	minMaxFn     func(pair swapzone.Pair) (*swapzone.MinMax, error)
	rateFn       func(pair swapzone.Pair, amount string) (*swapzone.Quote, error)
	createFn     func(req swapzone.CreateRequest) (*swapzone.Transaction, error)
}

func newStubSwapClient() *stubSwapClient {
	return &stubSwapClient{
		currenciesFn: func() ([]swapzone.Currency, error) {
			return testCatalog, nil
		},
		minMaxFn: func(swapzone.Pair) (*swapzone.MinMax, error) {
			return &swapzone.MinMax{
				MinAmount: decimal.RequireFromString("0.01"),
				MaxAmount: decimal.RequireFromString("1000"),
			}, nil
		},
		rateFn: func(swapzone.Pair, string) (*swapzone.Quote, error) {
			return &swapzone.Quote{
				AmountEstimated: decimal.RequireFromString("100.00000000"),
			}, nil
		},
		createFn: func(req swapzone.CreateRequest) (*swapzone.Transaction, error) {
			return &swapzone.Transaction{
				ID:             uuid.New().String(),
				DepositAddress: "deposit-addr",
			}, nil
		},
	}
}

func (c *stubSwapClient) Currencies(
	_ context.Context, _ bool,
) ([]swapzone.Currency, error) {
	return c.currenciesFn()
}

func (c *stubSwapClient) MinMax(
	_ context.Context, pair swapzone.Pair,
) (*swapzone.MinMax, error) {
	c.mtx.Lock()
	c.minMaxCalls++
	c.mtx.Unlock()
	return c.minMaxFn(pair)
}

func (c *stubSwapClient) Rate(
	_ context.Context, pair swapzone.Pair, amount string,
) (*swapzone.Quote, error) {
	c.mtx.Lock()
	c.rateCalls++
	c.mtx.Unlock()
	return c.rateFn(pair, amount)
}

func (c *stubSwapClient) CreateTransaction(
	_ context.Context, req swapzone.CreateRequest,
) (*swapzone.Transaction, error) {
	c.mtx.Lock()
	c.createCalls++
	c.mtx.Unlock()
	return c.createFn(req)
}

func (c *stubSwapClient) Status(
	_ context.Context, txID string,
) (*swapzone.StatusInfo, error) {
	return &swapzone.StatusInfo{ID: txID, Status: "waiting"}, nil
}

// fakeOrderRepository keeps orders in a map, enough for service tests.
type fakeOrderRepository struct {
	domain.OrderRepository
	mtx    sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepository) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return domain.ErrOrderAlreadyExists
	}
	r.orders[order.ID] = order
	return nil
}

type fakeSettingRepository struct {
	domain.SettingRepository
	markup string
}

func (r *fakeSettingRepository) GetSetting(
	_ context.Context, key, defaultValue string,
) (string, error) {
	if r.markup == "" {
		return defaultValue, nil
	}
	return r.markup, nil
}

func newTestExchange(
	client *stubSwapClient,
) (application.ExchangeService, *fakeOrderRepository) {
	orders := newFakeOrderRepository()
	svc := application.NewExchangeService(
		client, orders, &fakeSettingRepository{}, nil,
		[]string{"btc", "eth", "usdt"},
	)
	return svc, orders
}

func pick(data string) application.Event {
	return application.Event{Type: application.EventPickCurrency, Data: data}
}

func pickNet(data string) application.Event {
	return application.Event{Type: application.EventPickNetwork, Data: data}
}

func text(data string) application.Event {
	return application.Event{Type: application.EventText, Data: data}
}

// runToPreview drives a session btc/bitcoin -> eth/ethereum up to the
// preview for the given user.
func runToPreview(
	t *testing.T, svc application.ExchangeService, userID int64, amount string,
) *application.Reply {
	ctx := context.Background()

	reply, err := svc.Start(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, application.StateSelectFromCurrency, reply.State)

	reply, err = svc.HandleEvent(ctx, userID, pick("btc"))
	require.NoError(t, err)
	// btc has one network, selection is skipped.
	require.Equal(t, application.StateSelectToCurrency, reply.State)

	reply, err = svc.HandleEvent(ctx, userID, pick("eth"))
	require.NoError(t, err)
	require.Equal(t, application.StateSelectToNetwork, reply.State)

	reply, err = svc.HandleEvent(ctx, userID, pickNet("ethereum"))
	require.NoError(t, err)
	require.Equal(t, application.StateEnterAmount, reply.State)

	reply, err = svc.HandleEvent(ctx, userID, text(amount))
	require.NoError(t, err)
	return reply
}

func TestNegotiationHappyPath(t *testing.T) {
	client := newStubSwapClient()
	svc, orders := newTestExchange(client)
	ctx := context.Background()

	reply := runToPreview(t, svc, 42, "1.5")
	require.Equal(t, application.StateConfirmPreview, reply.State)
	// Default markup 0.5% on 100.00000000.
	require.Equal(t, "99.50000000", reply.Args["estimated_amount"])

	reply, err := svc.HandleEvent(
		ctx, 42, application.Event{Type: application.EventConfirm},
	)
	require.NoError(t, err)
	require.Equal(t, application.StateEnterAddress, reply.State)

	reply, err = svc.HandleEvent(ctx, 42, text("0xrecipient"))
	require.NoError(t, err)
	require.Equal(t, application.StateCompleted, reply.State)
	require.True(t, reply.Terminal())
	require.Equal(t, "deposit-addr", reply.Args["deposit_address"])

	order, ok := orders.orders[reply.OrderID]
	require.True(t, ok)
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.Equal(t, "99.50000000", order.ToAmountEstimated)
	require.Equal(t, "1.5", order.FromAmount)
	require.Equal(t, "0xrecipient", order.RecipientAddress)

	// Terminal transition cleared the session.
	_, active := svc.CurrentState(42)
	require.False(t, active)
	_, err = svc.HandleEvent(ctx, 42, text("anything"))
	require.ErrorIs(t, err, application.ErrNoActiveExchange)
}

func TestSingleNetworkCurrencySkipsNetworkSelection(t *testing.T) {
	client := newStubSwapClient()
	svc, _ := newTestExchange(client)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	reply, err := svc.HandleEvent(ctx, 1, pick("btc"))
	require.NoError(t, err)
	require.Equal(t, application.StateSelectToCurrency, reply.State)

	reply, err = svc.HandleEvent(ctx, 1, pick("doge"))
	require.NoError(t, err)
	// Both sides single-network: straight to the amount.
	require.Equal(t, application.StateEnterAmount, reply.State)
}

func TestMultiNetworkCurrencyPromptsForNetwork(t *testing.T) {
	client := newStubSwapClient()
	svc, _ := newTestExchange(client)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	reply, err := svc.HandleEvent(ctx, 1, pick("usdt"))
	require.NoError(t, err)
	require.Equal(t, application.StateSelectFromNetwork, reply.State)
	require.Len(t, reply.Choices, 3)

	// A network the currency does not have is rejected in place.
	reply, err = svc.HandleEvent(ctx, 1, pickNet("solana"))
	require.NoError(t, err)
	require.Equal(t, application.StateSelectFromNetwork, reply.State)
	require.Equal(t, "error_invalid_choice", reply.TextKey)

	reply, err = svc.HandleEvent(ctx, 1, pickNet("tron"))
	require.NoError(t, err)
	require.Equal(t, application.StateSelectToCurrency, reply.State)
}

func TestAmountBelowMinimumRepromptsWithoutQuoting(t *testing.T) {
	client := newStubSwapClient()
	svc, _ := newTestExchange(client)

	reply := runToPreview(t, svc, 1, "0.001")
	require.Equal(t, application.StateEnterAmount, reply.State)
	require.Equal(t, "error_amount_out_of_bounds", reply.TextKey)
	require.Equal(t, "0.01", reply.Args["min_amount"])
	require.Equal(t, 0, client.rateCalls)

	state, active := svc.CurrentState(1)
	require.True(t, active)
	require.Equal(t, application.StateEnterAmount, state)
}

func TestInvalidAmountReprompts(t *testing.T) {
	client := newStubSwapClient()
	svc, _ := newTestExchange(client)

	reply := runToPreview(t, svc, 1, "not-a-number")
	require.Equal(t, application.StateEnterAmount, reply.State)
	require.Equal(t, "error_invalid_amount", reply.TextKey)
	require.Equal(t, 0, client.minMaxCalls)
}

func TestUpstreamUnavailableDuringAmountCancels(t *testing.T) {
	client := newStubSwapClient()
	client.minMaxFn = func(swapzone.Pair) (*swapzone.MinMax, error) {
		return nil, swapzone.ErrUpstreamUnavailable
	}
	svc, _ := newTestExchange(client)

	reply := runToPreview(t, svc, 1, "1.5")
	require.Equal(t, application.StateCanceled, reply.State)
	require.Equal(t, "error_api_connection", reply.TextKey)

	// The session is gone, a fresh start begins from scratch.
	_, active := svc.CurrentState(1)
	require.False(t, active)
	restart, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, application.StateSelectFromCurrency, restart.State)
}

func TestCancelAtPreviewLeavesNoResidue(t *testing.T) {
	client := newStubSwapClient()
	svc, _ := newTestExchange(client)
	ctx := context.Background()

	reply := runToPreview(t, svc, 1, "1.5")
	require.Equal(t, application.StateConfirmPreview, reply.State)

	reply, err := svc.HandleEvent(
		ctx, 1, application.Event{Type: application.EventCancel},
	)
	require.NoError(t, err)
	require.Equal(t, application.StateCanceled, reply.State)
	require.Equal(t, "exchange_canceled", reply.TextKey)

	_, active := svc.CurrentState(1)
	require.False(t, active)

	restart, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, application.StateSelectFromCurrency, restart.State)
}

func TestUnexpectedInputAtPreviewCancels(t *testing.T) {
	client := newStubSwapClient()
	svc, _ := newTestExchange(client)

	reply := runToPreview(t, svc, 1, "1.5")
	require.Equal(t, application.StateConfirmPreview, reply.State)

	reply, err := svc.HandleEvent(context.Background(), 1, text("hm?"))
	require.NoError(t, err)
	require.Equal(t, application.StateCanceled, reply.State)
}

func TestSearchSubFlow(t *testing.T) {
	client := newStubSwapClient()
	svc, _ := newTestExchange(client)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	reply, err := svc.HandleEvent(
		ctx, 1, application.Event{Type: application.EventSearch},
	)
	require.NoError(t, err)
	require.Equal(t, application.StateEnterSearchQuery, reply.State)

	// No match re-prompts for another query.
	reply, err = svc.HandleEvent(ctx, 1, text("zzz"))
	require.NoError(t, err)
	require.Equal(t, application.StateEnterSearchQuery, reply.State)
	require.Equal(t, "error_no_currency_found", reply.TextKey)

	// Matching is case-insensitive on ticker and name.
	reply, err = svc.HandleEvent(ctx, 1, text("TETHER"))
	require.NoError(t, err)
	require.Equal(t, application.StateSelectFromCurrency, reply.State)
	require.Equal(t, "Tether (USDT)", reply.Choices[0].Label)

	// The filtered shortlist was display-only; any catalog currency can
	// still be picked.
	reply, err = svc.HandleEvent(ctx, 1, pick("btc"))
	require.NoError(t, err)
	require.Equal(t, application.StateSelectToCurrency, reply.State)
}

func TestAmbiguousCreationFailureIsSurfacedDistinctly(t *testing.T) {
	client := newStubSwapClient()
	client.createFn = func(swapzone.CreateRequest) (*swapzone.Transaction, error) {
		return nil, &swapzone.AmbiguousCreationError{}
	}
	svc, orders := newTestExchange(client)
	ctx := context.Background()

	reply := runToPreview(t, svc, 1, "1.5")
	require.Equal(t, application.StateConfirmPreview, reply.State)

	_, err := svc.HandleEvent(
		ctx, 1, application.Event{Type: application.EventConfirm},
	)
	require.NoError(t, err)

	reply, err = svc.HandleEvent(ctx, 1, text("0xrecipient"))
	require.NoError(t, err)
	require.Equal(t, application.StateCanceled, reply.State)
	require.Equal(t, "error_creation_status_unknown", reply.TextKey)

	// No blind retry, no phantom order.
	require.Equal(t, 1, client.createCalls)
	require.Empty(t, orders.orders)
}

func TestCancelDuringInFlightCallDiscardsResult(t *testing.T) {
	client := newStubSwapClient()
	entered := make(chan struct{})
	proceed := make(chan struct{})
	client.minMaxFn = func(swapzone.Pair) (*swapzone.MinMax, error) {
		close(entered)
		<-proceed
		return &swapzone.MinMax{
			MinAmount: decimal.RequireFromString("0.01"),
			MaxAmount: decimal.RequireFromString("1000"),
		}, nil
	}
	svc, orders := newTestExchange(client)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	_, err = svc.HandleEvent(ctx, 1, pick("btc"))
	require.NoError(t, err)
	_, err = svc.HandleEvent(ctx, 1, pick("doge"))
	require.NoError(t, err)

	inFlight := make(chan error, 1)
	go func() {
		_, err := svc.HandleEvent(ctx, 1, text("1.5"))
		inFlight <- err
	}()
	<-entered

	// Cancel while the bounds check is still in flight, then let it finish.
	reply, err := svc.HandleEvent(
		ctx, 1, application.Event{Type: application.EventCancel},
	)
	require.NoError(t, err)
	require.Equal(t, application.StateCanceled, reply.State)
	close(proceed)

	// The late result must not resurrect the discarded session.
	require.ErrorIs(t, <-inFlight, application.ErrStaleSession)
	_, active := svc.CurrentState(1)
	require.False(t, active)
	require.Empty(t, orders.orders)
}

func TestConcurrentUsersAreIndependent(t *testing.T) {
	client := newStubSwapClient()
	svc, orders := newTestExchange(client)
	ctx := context.Background()

	var wg sync.WaitGroup
	userIDs := []int64{100, 200, 300, 400}
	for _, userID := range userIDs {
		userID := userID
		wg.Add(1)
		go func() {
			defer wg.Done()

			reply := runToPreview(t, svc, userID, "1.5")
			require.Equal(t, application.StateConfirmPreview, reply.State)

			_, err := svc.HandleEvent(
				ctx, userID, application.Event{Type: application.EventConfirm},
			)
			require.NoError(t, err)

			_, err = svc.HandleEvent(ctx, userID, text("0xrecipient"))
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// Each user ended with their own independent order.
	require.Len(t, orders.orders, len(userIDs))
	owners := make(map[int64]int)
	for _, order := range orders.orders {
		owners[order.UserID]++
		require.Equal(t, "99.50000000", order.ToAmountEstimated)
	}
	for _, userID := range userIDs {
		require.Equal(t, 1, owners[userID])
	}
}
