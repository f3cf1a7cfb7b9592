package tracker

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	eventQueueMaxSize = 100
	errorQueueMaxSize = 10
)

type transactionTracker struct {
	interval     time.Duration
	statusSvc    StatusProvider
	errChan      chan error
	eventChan    chan Event
	observables  map[string]*observableHandler
	errorHandler func(err error)
	rateLimiter  *rate.Limiter
	mutex        *sync.RWMutex
	wg           *sync.WaitGroup
}

// Opts defines the parameters needed for creating a tracker service with
// NewService.
type Opts struct {
	StatusProvider StatusProvider
	Interval       time.Duration
	// RequestsPerSecond caps the polling rate across all observed
	// transactions.
	RequestsPerSecond float64
	ErrorHandler      func(err error)
}

// NewService returns a tracker ready to watch transaction statuses. Use
// Start and Stop to manage it.
func NewService(opts Opts) Service {
	errorHandler := opts.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(err error) {
			log.WithError(err).Warn("error while polling transaction status")
		}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &transactionTracker{
		interval:     opts.Interval,
		statusSvc:    opts.StatusProvider,
		errChan:      make(chan error, errorQueueMaxSize),
		eventChan:    make(chan Event, eventQueueMaxSize),
		observables:  map[string]*observableHandler{},
		errorHandler: errorHandler,
		rateLimiter:  rate.NewLimiter(rate.Limit(rps), 1),
		mutex:        &sync.RWMutex{},
		wg:           &sync.WaitGroup{},
	}
}

// Start consumes polling errors until Stop is called.
func (t *transactionTracker) Start() {
	for err := range t.errChan {
		go t.errorHandler(err)
	}
}

// Stop stops watching all transactions and closes the event channel after a
// final QuitEvent.
func (t *transactionTracker) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, handler := range t.observables {
		go handler.stop()
	}
	t.wg.Wait()
	t.eventChan <- QuitEvent{}
	close(t.errChan)
}

// GetEventChannel returns the channel status events are emitted on.
func (t *transactionTracker) GetEventChannel() chan Event {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.eventChan
}

// AddTransaction starts watching the transaction unless it already is.
func (t *transactionTracker) AddTransaction(txID string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.observables[txID]; !ok {
		handler := newObservableHandler(
			txID, t.statusSvc, t.wg, t.interval,
			t.eventChan, t.errChan, t.rateLimiter,
		)
		t.observables[txID] = handler
		go handler.start()
	}
}

// RemoveTransaction stops watching the transaction.
func (t *transactionTracker) RemoveTransaction(txID string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if handler, ok := t.observables[txID]; ok {
		handler.stop()
		delete(t.observables, txID)
	}
}

// IsObserving reports whether the transaction is currently watched.
func (t *transactionTracker) IsObserving(txID string) bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	_, ok := t.observables[txID]
	return ok
}

type observableHandler struct {
	txID        string
	statusSvc   StatusProvider
	wg          *sync.WaitGroup
	ticker      *time.Ticker
	eventChan   chan Event
	errChan     chan error
	stopChan    chan struct{}
	rateLimiter *rate.Limiter
	stopOnce    sync.Once
}

func newObservableHandler(
	txID string,
	statusSvc StatusProvider,
	wg *sync.WaitGroup,
	interval time.Duration,
	eventChan chan Event,
	errChan chan error,
	rateLimiter *rate.Limiter,
) *observableHandler {
	return &observableHandler{
		txID:        txID,
		statusSvc:   statusSvc,
		wg:          wg,
		ticker:      time.NewTicker(interval),
		eventChan:   eventChan,
		errChan:     errChan,
		stopChan:    make(chan struct{}),
		rateLimiter: rateLimiter,
	}
}

func (h *observableHandler) start() {
	h.wg.Add(1)
	defer h.wg.Done()

	h.observe()
	for {
		select {
		case <-h.ticker.C:
			h.observe()
		case <-h.stopChan:
			return
		}
	}
}

func (h *observableHandler) stop() {
	h.stopOnce.Do(func() {
		h.ticker.Stop()
		close(h.stopChan)
	})
}

func (h *observableHandler) observe() {
	if err := h.rateLimiter.Wait(context.Background()); err != nil {
		h.errChan <- err
		return
	}

	info, err := h.statusSvc.Status(context.Background(), h.txID)
	if err != nil {
		h.errChan <- err
		return
	}

	h.eventChan <- TransactionEvent{
		TxID:           h.txID,
		Status:         info.Status,
		AmountReceived: info.AmountReceived.String(),
	}
}
