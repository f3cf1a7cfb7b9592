package application

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/tabadex/tabadex-bot/internal/core/ports"
	"github.com/tabadex/tabadex-bot/internal/metrics"
	"github.com/tabadex/tabadex-bot/pkg/mathutil"
	"github.com/tabadex/tabadex-bot/pkg/swapzone"
)

// ExchangeService drives the multi-step exchange negotiation. One session
// per user; Start opens (or restarts) it, HandleEvent feeds it user inputs
// until a terminal reply.
//
// Step ordering: source currency and network, then target currency and
// network, then amount. The amount bounds are therefore always validated
// against the fully resolved pair on both sides before any rate is quoted,
// and the markup is applied exactly once when the preview is built.
type ExchangeService interface {
	Start(ctx context.Context, userID int64) (*Reply, error)
	HandleEvent(ctx context.Context, userID int64, event Event) (*Reply, error)
	// CurrentState returns the state of the user's active session, if any.
	CurrentState(userID int64) (State, bool)
}

type exchangeService struct {
	swapClient        ports.SwapClient
	orderRepository   domain.OrderRepository
	settingRepository domain.SettingRepository
	watcher           ports.OrderWatcher
	topTickers        []string
	sessions          *sessionStore
}

func NewExchangeService(
	swapClient ports.SwapClient,
	orderRepository domain.OrderRepository,
	settingRepository domain.SettingRepository,
	watcher ports.OrderWatcher,
	topTickers []string,
) ExchangeService {
	return &exchangeService{
		swapClient:        swapClient,
		orderRepository:   orderRepository,
		settingRepository: settingRepository,
		watcher:           watcher,
		topTickers:        topTickers,
		sessions:          newSessionStore(),
	}
}

type transitionHandler func(
	svc *exchangeService, ctx context.Context,
	userID int64, snap session, event Event,
) (*Reply, error)

// transitions is the state machine: state × event → handler. Events missing
// from a state's row are rejected with a re-prompt, except at the preview
// where anything but a confirmation cancels.
var transitions = map[State]map[EventType]transitionHandler{
	StateSelectFromCurrency: {
		EventPickCurrency: (*exchangeService).pickCurrency,
		EventSearch:       (*exchangeService).openSearch,
		EventViewAll:      (*exchangeService).viewAll,
	},
	StateSelectFromNetwork: {
		EventPickNetwork: (*exchangeService).pickNetwork,
	},
	StateSelectToCurrency: {
		EventPickCurrency: (*exchangeService).pickCurrency,
		EventSearch:       (*exchangeService).openSearch,
		EventViewAll:      (*exchangeService).viewAll,
	},
	StateSelectToNetwork: {
		EventPickNetwork: (*exchangeService).pickNetwork,
	},
	StateEnterAmount: {
		EventText: (*exchangeService).enterAmount,
	},
	StateConfirmPreview: {
		EventConfirm: (*exchangeService).confirmPreview,
	},
	StateEnterAddress: {
		EventText: (*exchangeService).enterAddress,
	},
	StateEnterSearchQuery: {
		EventText: (*exchangeService).runSearch,
	},
}

func (s *exchangeService) Start(
	ctx context.Context, userID int64,
) (*Reply, error) {
	catalog, err := s.swapClient.Currencies(ctx, true)
	if err != nil {
		log.WithError(err).WithField("user", userID).
			Error("cannot start exchange, catalog fetch failed")
		return &Reply{TextKey: "error_api_connection", State: StateCanceled}, nil
	}

	// A new start while a negotiation is active restarts it; two sessions
	// for one user never coexist.
	s.sessions.drop(userID)
	snap := s.sessions.create(userID, catalog)

	metrics.NegotiationsStarted.Inc()
	log.WithField("user", userID).Debug("exchange negotiation started")

	return s.selectionPrompt(snap, StateSelectFromCurrency, s.shortlist(snap)), nil
}

func (s *exchangeService) HandleEvent(
	ctx context.Context, userID int64, event Event,
) (*Reply, error) {
	snap, ok := s.sessions.snapshot(userID)
	if !ok {
		return nil, ErrNoActiveExchange
	}

	if event.Type == EventCancel {
		return s.cancel(userID, snap, "exchange_canceled"), nil
	}

	handler, ok := transitions[snap.state][event.Type]
	if !ok {
		// Anything unexpected at the preview is a refusal.
		if snap.state == StateConfirmPreview {
			return s.cancel(userID, snap, "exchange_canceled"), nil
		}
		reply := s.promptFor(snap)
		reply.TextKey = "error_invalid_choice"
		return reply, nil
	}

	return handler(s, ctx, userID, snap, event)
}

func (s *exchangeService) CurrentState(userID int64) (State, bool) {
	snap, ok := s.sessions.snapshot(userID)
	if !ok {
		return 0, false
	}
	return snap.state, true
}

func (s *exchangeService) pickCurrency(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	ticker := strings.ToLower(strings.TrimSpace(event.Data))
	currency, ok := snap.byTicker[ticker]
	if !ok {
		reply := s.promptFor(snap)
		reply.TextKey = "error_invalid_choice"
		return reply, nil
	}

	pickingSource := snap.state == StateSelectFromCurrency

	if len(currency.Networks) > 1 {
		next := StateSelectToNetwork
		if pickingSource {
			next = StateSelectFromNetwork
		}
		committed := s.sessions.commit(userID, snap.generation, func(sess *session) {
			if pickingSource {
				sess.fromCurrency = ticker
			} else {
				sess.toCurrency = ticker
			}
			sess.state = next
		})
		if !committed {
			return nil, ErrStaleSession
		}
		return networkPrompt(next, currency), nil
	}

	// Single-network currencies skip the network selection step.
	network := ""
	if len(currency.Networks) == 1 {
		network = currency.Networks[0]
	}
	next := StateEnterAmount
	if pickingSource {
		next = StateSelectToCurrency
	}
	committed := s.sessions.commit(userID, snap.generation, func(sess *session) {
		if pickingSource {
			sess.fromCurrency, sess.fromNetwork = ticker, network
		} else {
			sess.toCurrency, sess.toNetwork = ticker, network
		}
		sess.state = next
		snap = *sess
	})
	if !committed {
		return nil, ErrStaleSession
	}
	return s.nextAfterSideResolved(snap, next), nil
}

func (s *exchangeService) pickNetwork(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	network := strings.TrimSpace(event.Data)
	pickingSource := snap.state == StateSelectFromNetwork

	ticker := snap.toCurrency
	if pickingSource {
		ticker = snap.fromCurrency
	}
	if !validNetwork(snap.byTicker[ticker], network) {
		return networkPromptWithError(snap, pickingSource), nil
	}

	next := StateEnterAmount
	if pickingSource {
		next = StateSelectToCurrency
	}
	committed := s.sessions.commit(userID, snap.generation, func(sess *session) {
		if pickingSource {
			sess.fromNetwork = network
		} else {
			sess.toNetwork = network
		}
		sess.state = next
		snap = *sess
	})
	if !committed {
		return nil, ErrStaleSession
	}
	return s.nextAfterSideResolved(snap, next), nil
}

func (s *exchangeService) enterAmount(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(event.Data))
	if err != nil || !amount.IsPositive() {
		return &Reply{
			TextKey: "error_invalid_amount",
			Args:    map[string]string{"from_currency": upper(snap.fromCurrency)},
			State:   StateEnterAmount,
		}, nil
	}

	minMax, err := s.swapClient.MinMax(ctx, snap.pair())
	if err != nil {
		rejected := &swapzone.RejectedError{}
		if errors.As(err, &rejected) {
			return &Reply{
				TextKey: "error_amount_rejected",
				State:   StateEnterAmount,
			}, nil
		}
		return s.cancel(userID, snap, "error_api_connection"), nil
	}

	if amount.LessThan(minMax.MinAmount) || amount.GreaterThan(minMax.MaxAmount) {
		return &Reply{
			TextKey: "error_amount_out_of_bounds",
			Args: map[string]string{
				"min_amount": minMax.MinAmount.String(),
				"max_amount": minMax.MaxAmount.String(),
			},
			State: StateEnterAmount,
		}, nil
	}

	return s.buildPreview(ctx, userID, snap, amount.String())
}

// buildPreview fetches the final quote, applies the markup exactly once and
// moves the session to the preview step.
func (s *exchangeService) buildPreview(
	ctx context.Context, userID int64, snap session, amount string,
) (*Reply, error) {
	quote, err := s.swapClient.Rate(ctx, snap.pair(), amount)
	if err != nil {
		rejected := &swapzone.RejectedError{}
		if errors.As(err, &rejected) {
			return s.cancel(userID, snap, "error_no_rate_found"), nil
		}
		return s.cancel(userID, snap, "error_api_connection"), nil
	}
	if !quote.AmountEstimated.IsPositive() {
		return s.cancel(userID, snap, "error_no_rate_found"), nil
	}

	markupStr, err := s.settingRepository.GetSetting(
		ctx, domain.MarkupPercentageKey, domain.DefaultMarkupPercentage,
	)
	if err != nil {
		log.WithError(err).Error("cannot read markup setting")
		return s.cancel(userID, snap, "error_api_connection"), nil
	}
	markup, err := decimal.NewFromString(markupStr)
	if err != nil {
		log.WithError(err).WithField("markup", markupStr).
			Error("markup setting is not a decimal")
		return s.cancel(userID, snap, "error_api_connection"), nil
	}

	finalAmount := mathutil.ApplyMarkup(quote.AmountEstimated, markup)

	committed := s.sessions.commit(userID, snap.generation, func(sess *session) {
		sess.amount = amount
		sess.finalAmount = finalAmount
		sess.state = StateConfirmPreview
		snap = *sess
	})
	if !committed {
		return nil, ErrStaleSession
	}

	return &Reply{
		TextKey: "exchange_preview_details",
		Args: map[string]string{
			"amount":           amount,
			"from_currency":    upper(snap.fromCurrency),
			"estimated_amount": finalAmount.StringFixed(8),
			"to_currency":      upper(snap.toCurrency),
		},
		Choices: []Choice{
			{LabelKey: "confirm_button", Data: "confirm"},
			{LabelKey: "cancel_button", Data: "cancel"},
		},
		State: StateConfirmPreview,
	}, nil
}

func (s *exchangeService) confirmPreview(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	committed := s.sessions.commit(userID, snap.generation, func(sess *session) {
		sess.state = StateEnterAddress
	})
	if !committed {
		return nil, ErrStaleSession
	}
	return &Reply{
		TextKey: "exchange_enter_recipient_address",
		Args:    map[string]string{"to_currency": upper(snap.toCurrency)},
		State:   StateEnterAddress,
	}, nil
}

func (s *exchangeService) enterAddress(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	recipient := strings.TrimSpace(event.Data)
	if recipient == "" {
		return &Reply{
			TextKey: "error_empty_address",
			Args:    map[string]string{"to_currency": upper(snap.toCurrency)},
			State:   StateEnterAddress,
		}, nil
	}

	tx, err := s.swapClient.CreateTransaction(ctx, swapzone.CreateRequest{
		From:          snap.fromCurrency,
		FromNetwork:   snap.fromNetwork,
		To:            snap.toCurrency,
		ToNetwork:     snap.toNetwork,
		Amount:        snap.amount,
		Recipient:     recipient,
		RefundAddress: recipient,
	})
	if err != nil {
		ambiguous := &swapzone.AmbiguousCreationError{}
		if errors.As(err, &ambiguous) {
			// The upstream may have created the order. Never retry; tell
			// the user to reach support instead.
			log.WithError(err).WithField("user", userID).
				Error("transaction creation outcome unknown")
			return s.cancel(userID, snap, "error_creation_status_unknown"), nil
		}
		log.WithError(err).WithField("user", userID).
			Error("transaction creation failed")
		return s.cancel(userID, snap, "error_creating_transaction"), nil
	}

	order := domain.NewOrder(
		tx.ID, userID,
		snap.fromCurrency, snap.fromNetwork, snap.toCurrency, snap.toNetwork,
		snap.amount, snap.finalAmount.StringFixed(8),
		tx.DepositAddress, recipient,
	)
	if err := s.orderRepository.AddOrder(ctx, order); err != nil {
		// The upstream order exists; losing the local record must not hide
		// the deposit instructions from the user.
		log.WithError(err).WithField("order", order.ID).
			Error("created order could not be persisted")
	} else if s.watcher != nil {
		s.watcher.Watch(order.ID)
	}

	if !s.sessions.clear(userID, snap.generation) {
		return nil, ErrStaleSession
	}

	metrics.NegotiationsCompleted.Inc()
	metrics.OrdersCreated.Inc()
	log.WithFields(log.Fields{
		"user": userID, "order": order.ID,
	}).Info("exchange order created")

	return &Reply{
		TextKey: "exchange_deposit_info",
		Args: map[string]string{
			"amount":          snap.amount,
			"from_currency":   upper(snap.fromCurrency),
			"deposit_address": tx.DepositAddress,
			"tx_id":           tx.ID,
		},
		State:   StateCompleted,
		OrderID: order.ID,
	}, nil
}

func (s *exchangeService) openSearch(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	origin := snap.state
	committed := s.sessions.commit(userID, snap.generation, func(sess *session) {
		sess.searchOrigin = origin
		sess.state = StateEnterSearchQuery
	})
	if !committed {
		return nil, ErrStaleSession
	}
	return &Reply{TextKey: "search_currency_prompt", State: StateEnterSearchQuery}, nil
}

func (s *exchangeService) runSearch(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	matched := snap.searchCatalog(event.Data)
	if len(matched) == 0 {
		return &Reply{
			TextKey: "error_no_currency_found",
			State:   StateEnterSearchQuery,
		}, nil
	}

	origin := snap.searchOrigin
	committed := s.sessions.commit(userID, snap.generation, func(sess *session) {
		sess.state = origin
		snap = *sess
	})
	if !committed {
		return nil, ErrStaleSession
	}
	// The filtered list lives only in this reply, it is not persisted.
	return s.selectionPrompt(snap, origin, currencyChoices(matched)), nil
}

func (s *exchangeService) viewAll(
	ctx context.Context, userID int64, snap session, event Event,
) (*Reply, error) {
	return s.selectionPrompt(snap, snap.state, currencyChoices(snap.catalog)), nil
}

// cancel ends the negotiation, discarding the whole working set.
func (s *exchangeService) cancel(userID int64, snap session, textKey string) *Reply {
	s.sessions.clear(userID, snap.generation)
	metrics.NegotiationsCanceled.Inc()
	log.WithFields(log.Fields{
		"user": userID, "state": snap.state.String(),
	}).Debug("exchange negotiation canceled")
	return &Reply{TextKey: textKey, State: StateCanceled}
}

func (s *exchangeService) nextAfterSideResolved(snap session, next State) *Reply {
	if next == StateEnterAmount {
		return &Reply{
			TextKey: "exchange_enter_amount",
			Args:    map[string]string{"from_currency": upper(snap.fromCurrency)},
			State:   StateEnterAmount,
		}
	}
	return s.selectionPrompt(snap, next, s.shortlist(snap))
}

// promptFor rebuilds the standard prompt of the snapshot's current state,
// used to re-prompt after a recoverable error.
func (s *exchangeService) promptFor(snap session) *Reply {
	switch snap.state {
	case StateSelectFromCurrency, StateSelectToCurrency:
		return s.selectionPrompt(snap, snap.state, s.shortlist(snap))
	case StateSelectFromNetwork:
		return networkPrompt(snap.state, snap.byTicker[snap.fromCurrency])
	case StateSelectToNetwork:
		return networkPrompt(snap.state, snap.byTicker[snap.toCurrency])
	case StateEnterAmount:
		return &Reply{
			TextKey: "exchange_enter_amount",
			Args:    map[string]string{"from_currency": upper(snap.fromCurrency)},
			State:   StateEnterAmount,
		}
	case StateEnterAddress:
		return &Reply{
			TextKey: "exchange_enter_recipient_address",
			Args:    map[string]string{"to_currency": upper(snap.toCurrency)},
			State:   StateEnterAddress,
		}
	case StateEnterSearchQuery:
		return &Reply{TextKey: "search_currency_prompt", State: StateEnterSearchQuery}
	default:
		return &Reply{TextKey: "error_invalid_choice", State: snap.state}
	}
}

func (s *exchangeService) selectionPrompt(
	snap session, state State, choices []Choice,
) *Reply {
	textKey := "exchange_select_to_currency"
	if state == StateSelectFromCurrency {
		textKey = "exchange_select_from_currency"
	}
	return &Reply{
		TextKey: textKey,
		Choices: append(choices,
			Choice{LabelKey: "search_button", Data: "search"},
			Choice{LabelKey: "view_all_button", Data: "view_all"},
		),
		State: state,
	}
}

// shortlist returns the configured top currencies present in the catalog.
func (s *exchangeService) shortlist(snap session) []Choice {
	top := make([]swapzone.Currency, 0, len(s.topTickers))
	for _, ticker := range s.topTickers {
		if cur, ok := snap.byTicker[ticker]; ok {
			top = append(top, cur)
		}
	}
	if len(top) == 0 {
		top = snap.catalog
	}
	return currencyChoices(top)
}

func currencyChoices(currencies []swapzone.Currency) []Choice {
	choices := make([]Choice, 0, len(currencies))
	for _, cur := range currencies {
		choices = append(choices, Choice{
			Label: cur.Name + " (" + upper(cur.Ticker) + ")",
			Data:  cur.Ticker,
		})
	}
	return choices
}

func networkPrompt(state State, currency swapzone.Currency) *Reply {
	choices := make([]Choice, 0, len(currency.Networks))
	for _, network := range currency.Networks {
		choices = append(choices, Choice{Label: network, Data: network})
	}
	return &Reply{
		TextKey: "select_network_prompt",
		Args:    map[string]string{"currency": upper(currency.Ticker)},
		Choices: choices,
		State:   state,
	}
}

func networkPromptWithError(snap session, pickingSource bool) *Reply {
	currency := snap.byTicker[snap.toCurrency]
	if pickingSource {
		currency = snap.byTicker[snap.fromCurrency]
	}
	reply := networkPrompt(snap.state, currency)
	reply.TextKey = "error_invalid_choice"
	return reply
}

func validNetwork(currency swapzone.Currency, network string) bool {
	for _, n := range currency.Networks {
		if n == network {
			return true
		}
	}
	return false
}

func upper(s string) string { return strings.ToUpper(s) }
