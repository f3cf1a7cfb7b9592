package ports

import (
	"context"

	"github.com/tabadex/tabadex-bot/pkg/swapzone"
)

// SwapClient is the boundary to the external swap-quoting service. The
// concrete implementation lives in pkg/swapzone; services depend on this
// interface so tests can swap it for a stub.
type SwapClient interface {
	// Currencies returns the exchange catalog, served from a TTL'd cache
	// when useCache is set.
	Currencies(ctx context.Context, useCache bool) ([]swapzone.Currency, error)
	// MinMax returns the deposit amount bounds for a fully resolved pair.
	MinMax(ctx context.Context, pair swapzone.Pair) (*swapzone.MinMax, error)
	// Rate returns the estimated amount for a pair and deposit amount.
	Rate(
		ctx context.Context, pair swapzone.Pair, amount string,
	) (*swapzone.Quote, error)
	// CreateTransaction creates a real upstream exchange order. Never
	// retried by implementations.
	CreateTransaction(
		ctx context.Context, req swapzone.CreateRequest,
	) (*swapzone.Transaction, error)
	// Status returns the upstream progress of a created transaction.
	Status(ctx context.Context, txID string) (*swapzone.StatusInfo, error)
}
