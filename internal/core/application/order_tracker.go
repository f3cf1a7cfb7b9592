package application

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/tabadex/tabadex-bot/internal/core/ports"
	"github.com/tabadex/tabadex-bot/pkg/tracker"
)

// TextRenderer resolves a text key in a language, substituting args. The
// presentation layer provides it so notifications reach users localized.
type TextRenderer func(lang, key string, args map[string]string) string

// upstreamStatuses maps the status strings reported by the swap service
// onto the order lifecycle. Unknown strings are ignored so an upstream
// addition cannot corrupt local state.
var upstreamStatuses = map[string]domain.OrderStatus{
	"pending":    domain.OrderStatusPending,
	"waiting":    domain.OrderStatusWaiting,
	"confirming": domain.OrderStatusConfirming,
	"exchanging": domain.OrderStatusExchanging,
	"sending":    domain.OrderStatusSending,
	"finished":   domain.OrderStatusCompleted,
	"failed":     domain.OrderStatusFailed,
	"refunded":   domain.OrderStatusRefunded,
	"expired":    domain.OrderStatusCanceled,
	"overdue":    domain.OrderStatusCanceled,
}

// OrderTrackerService keeps local orders in sync with their upstream
// status and notifies the owner when an order reaches a final one. It also
// implements ports.OrderWatcher so the exchange flow can hand over orders
// as they are created.
type OrderTrackerService interface {
	ports.OrderWatcher
	Start(ctx context.Context) error
	Stop()
}

type orderTrackerService struct {
	tracker         tracker.Service
	orderRepository domain.OrderRepository
	userRepository  domain.UserRepository
	sender          ports.MessageSender
	render          TextRenderer
}

func NewOrderTrackerService(
	trackerSvc tracker.Service,
	orderRepository domain.OrderRepository,
	userRepository domain.UserRepository,
	sender ports.MessageSender,
	render TextRenderer,
) OrderTrackerService {
	return &orderTrackerService{
		tracker:         trackerSvc,
		orderRepository: orderRepository,
		userRepository:  userRepository,
		sender:          sender,
		render:          render,
	}
}

// Start re-registers every unfinished order and begins consuming status
// events. It returns once the registration is done; consumption continues
// in the background until Stop.
func (s *orderTrackerService) Start(ctx context.Context) error {
	go s.tracker.Start()

	orders, err := s.orderRepository.GetUnfinishedOrders(ctx)
	if err != nil {
		return err
	}
	for _, order := range orders {
		s.tracker.AddTransaction(order.ID)
	}
	if len(orders) > 0 {
		log.WithField("count", len(orders)).
			Info("resumed tracking of unfinished orders")
	}

	go s.consumeEvents()
	return nil
}

func (s *orderTrackerService) Stop() {
	s.tracker.Stop()
}

// Watch begins tracking a freshly created order.
func (s *orderTrackerService) Watch(orderID string) {
	s.tracker.AddTransaction(orderID)
}

func (s *orderTrackerService) consumeEvents() {
	for event := range s.tracker.GetEventChannel() {
		switch e := event.(type) {
		case tracker.TransactionEvent:
			s.applyStatus(e)
		case tracker.QuitEvent:
			return
		}
	}
}

func (s *orderTrackerService) applyStatus(event tracker.TransactionEvent) {
	status, ok := upstreamStatuses[event.Status]
	if !ok {
		log.WithFields(log.Fields{
			"order": event.TxID, "status": event.Status,
		}).Warn("unknown upstream status")
		return
	}

	ctx := context.Background()
	var changed bool
	var updated *domain.Order
	err := s.orderRepository.UpdateOrder(
		ctx, event.TxID, func(o *domain.Order) (*domain.Order, error) {
			if o.Status == status {
				updated = o
				return o, nil
			}
			if err := o.AdvanceStatus(status); err != nil {
				return nil, err
			}
			if status == domain.OrderStatusCompleted &&
				event.AmountReceived != "" && event.AmountReceived != "0" {
				o.SetActualAmount(event.AmountReceived)
			}
			changed = true
			updated = o
			return o, nil
		},
	)
	if err != nil {
		if errors.Is(err, domain.ErrOrderStatusFinal) ||
			errors.Is(err, domain.ErrOrderNotFound) {
			s.tracker.RemoveTransaction(event.TxID)
			return
		}
		log.WithError(err).WithField("order", event.TxID).
			Error("could not record upstream status")
		return
	}

	if !changed {
		return
	}
	log.WithFields(log.Fields{
		"order": event.TxID, "status": status,
	}).Info("order status advanced")

	if status.IsFinal() {
		s.tracker.RemoveTransaction(event.TxID)
		s.notifyOwner(ctx, updated)
	}
}

func (s *orderTrackerService) notifyOwner(
	ctx context.Context, order *domain.Order,
) {
	if s.sender == nil || s.render == nil {
		return
	}

	user, err := s.userRepository.GetUser(ctx, order.UserID)
	if err != nil {
		log.WithError(err).WithField("order", order.ID).
			Warn("owner of finished order not found")
		return
	}

	key := "order_failed"
	args := map[string]string{"order_id": order.ID}
	if order.Status == domain.OrderStatusCompleted {
		key = "order_completed"
		args["amount"] = order.ToAmountActual
		if args["amount"] == "" {
			args["amount"] = order.ToAmountEstimated
		}
		args["to_currency"] = order.ToCurrency
	}

	text := s.render(user.LanguageCode, key, args)
	if err := s.sender.SendMessage(ctx, user.UserID, text); err != nil {
		log.WithError(err).WithField("user", user.UserID).
			Warn("could not deliver order notification")
	}
}
