package dbbadger

import (
	"context"
	"errors"
	"time"

	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type orderRepositoryImpl struct {
	store *badgerhold.Store
}

func newOrderRepository(store *badgerhold.Store) domain.OrderRepository {
	return &orderRepositoryImpl{store: store}
}

func (r *orderRepositoryImpl) AddOrder(
	ctx context.Context, order *domain.Order,
) error {
	if err := r.store.Insert(order.ID, order); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	ctx context.Context, orderID string,
) (*domain.Order, error) {
	var order domain.Order
	if err := r.store.Get(orderID, &order); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetOrderForUser(
	ctx context.Context, orderID string, userID int64,
) (*domain.Order, error) {
	order, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *orderRepositoryImpl) GetOrdersForUser(
	ctx context.Context, userID int64, page, limit int,
) ([]domain.Order, error) {
	query := badgerhold.Where("UserID").Eq(userID).
		SortBy("CreatedAt").Reverse().
		Skip((page - 1) * limit).Limit(limit)

	var orders []domain.Order
	if err := r.store.Find(&orders, query); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepositoryImpl) GetUnfinishedOrders(
	ctx context.Context,
) ([]domain.Order, error) {
	open := []interface{}{
		domain.OrderStatusPending,
		domain.OrderStatusWaiting,
		domain.OrderStatusConfirming,
		domain.OrderStatusExchanging,
		domain.OrderStatusSending,
	}

	var orders []domain.Order
	if err := r.store.Find(
		&orders, badgerhold.Where("Status").In(open...),
	); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	ctx context.Context, orderID string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	order, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	updated, err := updateFn(order)
	if err != nil {
		return err
	}
	return r.store.Update(orderID, updated)
}

func (r *orderRepositoryImpl) CountOrdersByStatus(
	ctx context.Context, status domain.OrderStatus,
) (int, error) {
	count, err := r.store.Count(
		&domain.Order{}, badgerhold.Where("Status").Eq(status),
	)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *orderRepositoryImpl) CountOrdersSince(
	ctx context.Context, since time.Time,
) (int, error) {
	count, err := r.store.Count(
		&domain.Order{}, badgerhold.Where("CreatedAt").Ge(since),
	)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
