package domain

import (
	"context"
	"time"
)

// OrderRepository is the abstraction for any kind of database intended to
// persist Orders.
type OrderRepository interface {
	// AddOrder adds a new order. Adding an order whose id already exists
	// returns ErrOrderAlreadyExists.
	AddOrder(ctx context.Context, order *Order) error
	// GetOrder returns the order with the given upstream transaction id.
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	// GetOrderForUser returns the order only if it belongs to the given user.
	GetOrderForUser(
		ctx context.Context, orderID string, userID int64,
	) (*Order, error)
	// GetOrdersForUser returns one page of the user's orders, newest first.
	GetOrdersForUser(
		ctx context.Context, userID int64, page, limit int,
	) ([]Order, error)
	// GetUnfinishedOrders returns all orders still awaiting a final status.
	GetUnfinishedOrders(ctx context.Context) ([]Order, error)
	// UpdateOrder commits changes to an order in a transactional way.
	UpdateOrder(
		ctx context.Context, orderID string,
		updateFn func(o *Order) (*Order, error),
	) error
	// CountOrdersByStatus returns the number of orders with the given status.
	CountOrdersByStatus(ctx context.Context, status OrderStatus) (int, error)
	// CountOrdersSince returns the number of orders created after the given
	// time.
	CountOrdersSince(ctx context.Context, since time.Time) (int, error)
}
