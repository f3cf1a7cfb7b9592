package domain

import "time"

// OrderStatus tracks an order through the upstream exchange lifecycle. The
// values mirror the statuses reported by the swap service.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusWaiting    OrderStatus = "waiting"
	OrderStatusConfirming OrderStatus = "confirming"
	OrderStatusExchanging OrderStatus = "exchanging"
	OrderStatusSending    OrderStatus = "sending"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// IsFinal reports whether no further status change is expected.
func (s OrderStatus) IsFinal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusFailed,
		OrderStatusRefunded, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Order is a created exchange, keyed by the upstream transaction id.
// Amounts are kept as the decimal strings exchanged with the upstream so no
// precision is lost at the storage boundary.
type Order struct {
	ID                string
	UserID            int64
	FromCurrency      string
	FromNetwork       string
	ToCurrency        string
	ToNetwork         string
	FromAmount        string
	ToAmountEstimated string
	ToAmountActual    string
	DepositAddress    string
	RecipientAddress  string
	Status            OrderStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOrder returns a pending order for a just-created upstream transaction.
func NewOrder(
	txID string, userID int64,
	fromCurrency, fromNetwork, toCurrency, toNetwork string,
	fromAmount, toAmountEstimated, depositAddress, recipientAddress string,
) *Order {
	now := time.Now()
	return &Order{
		ID:                txID,
		UserID:            userID,
		FromCurrency:      fromCurrency,
		FromNetwork:       fromNetwork,
		ToCurrency:        toCurrency,
		ToNetwork:         toNetwork,
		FromAmount:        fromAmount,
		ToAmountEstimated: toAmountEstimated,
		DepositAddress:    depositAddress,
		RecipientAddress:  recipientAddress,
		Status:            OrderStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// AdvanceStatus moves the order to the given status. Once a final status is
// reached the order cannot move anymore.
func (o *Order) AdvanceStatus(status OrderStatus) error {
	if o.Status.IsFinal() {
		return ErrOrderStatusFinal
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

// SetActualAmount records the amount actually delivered by the upstream.
func (o *Order) SetActualAmount(amount string) {
	o.ToAmountActual = amount
	o.UpdatedAt = time.Now()
}
