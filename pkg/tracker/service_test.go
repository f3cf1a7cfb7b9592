package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tabadex/tabadex-bot/pkg/swapzone"
	"github.com/tabadex/tabadex-bot/pkg/tracker"
)

type stubStatusProvider struct {
	mtx      sync.Mutex
	statuses map[string]string
	err      error
}

func (p *stubStatusProvider) Status(
	_ context.Context, txID string,
) (*swapzone.StatusInfo, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &swapzone.StatusInfo{ID: txID, Status: p.statuses[txID]}, nil
}

func (p *stubStatusProvider) setStatus(txID, status string) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.statuses[txID] = status
}

func TestTrackerEmitsStatusEvents(t *testing.T) {
	provider := &stubStatusProvider{
		statuses: map[string]string{"tx-1": "waiting"},
	}
	svc := tracker.NewService(tracker.Opts{
		StatusProvider:    provider,
		Interval:          10 * time.Millisecond,
		RequestsPerSecond: 1000,
	})
	go svc.Start()

	svc.AddTransaction("tx-1")
	require.True(t, svc.IsObserving("tx-1"))

	event := nextTransactionEvent(t, svc)
	require.Equal(t, "tx-1", event.TxID)
	require.Equal(t, "waiting", event.Status)

	provider.setStatus("tx-1", "finished")
	for nextTransactionEvent(t, svc).Status != "finished" {
	}

	svc.RemoveTransaction("tx-1")
	require.False(t, svc.IsObserving("tx-1"))
	svc.Stop()
}

func TestTrackerReportsErrors(t *testing.T) {
	provider := &stubStatusProvider{
		statuses: map[string]string{},
		err:      errors.New("upstream down"),
	}

	gotErr := make(chan error, 1)
	svc := tracker.NewService(tracker.Opts{
		StatusProvider:    provider,
		Interval:          10 * time.Millisecond,
		RequestsPerSecond: 1000,
		ErrorHandler: func(err error) {
			select {
			case gotErr <- err:
			default:
			}
		},
	})
	go svc.Start()
	svc.AddTransaction("tx-err")

	select {
	case err := <-gotErr:
		require.EqualError(t, err, "upstream down")
	case <-time.After(time.Second):
		t.Fatal("no polling error reported")
	}

	svc.RemoveTransaction("tx-err")
	svc.Stop()
}

func TestAddTransactionIsIdempotent(t *testing.T) {
	provider := &stubStatusProvider{
		statuses: map[string]string{"tx-1": "waiting"},
	}
	svc := tracker.NewService(tracker.Opts{
		StatusProvider:    provider,
		Interval:          time.Minute,
		RequestsPerSecond: 1000,
	})
	go svc.Start()

	svc.AddTransaction("tx-1")
	svc.AddTransaction("tx-1")
	require.True(t, svc.IsObserving("tx-1"))

	// Only the initial poll of the single handler shows up.
	nextTransactionEvent(t, svc)
	select {
	case event := <-svc.GetEventChannel():
		t.Fatalf("unexpected extra event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}

	svc.RemoveTransaction("tx-1")
	svc.Stop()
}

func nextTransactionEvent(
	t *testing.T, svc tracker.Service,
) tracker.TransactionEvent {
	t.Helper()
	for {
		select {
		case event := <-svc.GetEventChannel():
			if txEvent, ok := event.(tracker.TransactionEvent); ok {
				return txEvent
			}
		case <-time.After(time.Second):
			t.Fatal("no transaction event emitted")
		}
	}
}
