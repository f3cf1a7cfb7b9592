package domain

import "errors"

var (
	// ErrUserNotFound ...
	ErrUserNotFound = errors.New("user not found")
	// ErrOrderNotFound ...
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists is thrown when adding an order with an upstream
	// transaction id that was already persisted.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderStatusFinal is thrown when trying to advance an order that
	// already reached a final status.
	ErrOrderStatusFinal = errors.New("order already reached a final status")
	// ErrAddressNotFound ...
	ErrAddressNotFound = errors.New("saved address not found")
	// ErrTicketNotFound ...
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrTicketClosed is thrown when replying on a closed ticket.
	ErrTicketClosed = errors.New("ticket is closed")
)
