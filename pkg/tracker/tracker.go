// Package tracker periodically polls the swap service for the progress of
// created transactions and emits an event whenever a status is reported.
package tracker

import (
	"context"

	"github.com/tabadex/tabadex-bot/pkg/swapzone"
)

// StatusProvider is the slice of the swap client the tracker needs.
type StatusProvider interface {
	Status(ctx context.Context, txID string) (*swapzone.StatusInfo, error)
}

const (
	QuitSignal EventType = iota
	TransactionStatus
)

type EventType int

func (et EventType) String() string {
	switch et {
	case QuitSignal:
		return "QuitSignal"
	case TransactionStatus:
		return "TransactionStatus"
	default:
		return "Unknown"
	}
}

// Event is emitted through the event channel during observation.
type Event interface {
	Type() EventType
}

type QuitEvent struct{}

func (q QuitEvent) Type() EventType {
	return QuitSignal
}

// TransactionEvent carries one status report for an observed transaction.
type TransactionEvent struct {
	TxID           string
	Status         string
	AmountReceived string
}

func (t TransactionEvent) Type() EventType {
	return TransactionStatus
}

// Service watches a set of transactions. Use Start and Stop to manage it.
type Service interface {
	Start()
	Stop()
	AddTransaction(txID string)
	RemoveTransaction(txID string)
	IsObserving(txID string) bool
	GetEventChannel() chan Event
}
