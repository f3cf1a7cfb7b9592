package swapzone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tabadex/tabadex-bot/pkg/circuitbreaker"
	"github.com/tabadex/tabadex-bot/pkg/retry"
)

const (
	// DefaultCacheTTL is how long a fetched currency catalog stays valid.
	DefaultCacheTTL = time.Hour
	// DefaultTimeout bounds every single outbound request.
	DefaultTimeout = 20 * time.Second
	// DefaultMaxAttempts is the retry budget for transient failures.
	DefaultMaxAttempts = 3

	apiKeyHeader = "x-api-key"
)

// Client mediates all calls to the swap-quoting service. It owns the HTTP
// session, the TTL'd currency catalog cache and the retry policy for
// transient upstream failures.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
	cb         *gobreaker.CircuitBreaker
	cache      *currencyCache
}

// Opts tweaks the optional knobs of the client. Zero values fall back to
// the package defaults.
type Opts struct {
	Timeout     time.Duration
	MaxAttempts int
	CacheTTL    time.Duration
	// Backoff overrides the wait between attempts, mostly for tests.
	Backoff func(attempt int) time.Duration
}

// NewClient returns a swap service client targeting apiURL and signing all
// requests with apiKey.
func NewClient(apiURL, apiKey string, opts Opts) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	backoff := opts.Backoff
	if backoff == nil {
		backoff = retry.ExponentialBackoff
	}
	policy := retry.Policy{
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		Retryable:   isRetryable,
	}

	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
		cb:         circuitbreaker.NewCircuitBreaker("swapzone"),
		cache:      newCurrencyCache(cacheTTL),
	}
}

func isRetryable(err error) bool {
	var stErr *statusError
	if errors.As(err, &stErr) {
		return isTransientStatus(stErr.status)
	}
	if errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return false
	}
	// Anything else is a network-level failure (conn refused, timeout).
	return true
}

// Currencies returns the upstream exchange catalog. While the cached
// snapshot is younger than the TTL and useCache is set, no request is
// issued. Entries without a ticker are dropped before caching.
func (c *Client) Currencies(
	ctx context.Context, useCache bool,
) ([]Currency, error) {
	if useCache {
		if currencies, ok := c.cache.get(); ok {
			return currencies, nil
		}
	}

	log.Debug("fetching currency catalog from swap service")

	body, err := c.get(ctx, "/currencies", nil)
	if err != nil {
		return nil, err
	}

	var list []Currency
	if err := json.Unmarshal(body, &list); err != nil {
		log.WithError(err).Warn("currency catalog is not parsable")
		return nil, ErrUpstreamUnavailable
	}

	currencies := make([]Currency, 0, len(list))
	for _, cur := range list {
		if cur.Ticker == "" {
			continue
		}
		currencies = append(currencies, cur)
	}

	c.cache.put(currencies)
	return currencies, nil
}

// MinMax returns the deposit amount bounds for a fully resolved pair.
func (c *Client) MinMax(ctx context.Context, pair Pair) (*MinMax, error) {
	body, err := c.get(ctx, "/min-max-amount", pairQuery(pair))
	if err != nil {
		return nil, err
	}

	minMax := &MinMax{}
	if err := json.Unmarshal(body, minMax); err != nil {
		return nil, ErrUpstreamUnavailable
	}
	return minMax, nil
}

// Rate returns the estimated amount for exchanging the given deposit amount
// over the pair, quoting across all exchange partners.
func (c *Client) Rate(
	ctx context.Context, pair Pair, amount string,
) (*Quote, error) {
	query := pairQuery(pair)
	query.Set("amount", amount)
	query.Set("rateType", "all")

	body, err := c.get(ctx, "/rate", query)
	if err != nil {
		return nil, err
	}

	quote := &Quote{}
	if err := json.Unmarshal(body, quote); err != nil {
		return nil, ErrUpstreamUnavailable
	}
	return quote, nil
}

// CreateTransaction creates a real, externally tracked exchange order. The
// call is issued exactly once: a failure once the request may have left the
// process is reported as *AmbiguousCreationError because a blind retry
// could create a duplicate order for the same user intent.
func (c *Client) CreateTransaction(
	ctx context.Context, req CreateRequest,
) (*Transaction, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	log.WithField("pair", fmt.Sprintf(
		"%s/%s->%s/%s", req.From, req.FromNetwork, req.To, req.ToNetwork,
	)).Info("creating upstream transaction")

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apiURL+"/create", bytes.NewReader(payload),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	status, body, err := c.send(httpReq)
	if err != nil {
		// The request may or may not have reached the upstream.
		return nil, &AmbiguousCreationError{Err: err}
	}

	if status >= 400 && status < 500 {
		return nil, &RejectedError{Status: status, Body: string(body)}
	}
	if status != http.StatusOK {
		return nil, &AmbiguousCreationError{
			Err: &statusError{status: status, body: string(body)},
		}
	}

	tx := &Transaction{}
	if err := json.Unmarshal(body, tx); err != nil {
		return nil, &AmbiguousCreationError{Err: err}
	}
	if tx.ID == "" || tx.DepositAddress == "" {
		return nil, &AmbiguousCreationError{
			Err: errors.New("incomplete transaction in upstream answer"),
		}
	}
	return tx, nil
}

// Status returns the upstream progress of a created transaction.
func (c *Client) Status(ctx context.Context, txID string) (*StatusInfo, error) {
	query := url.Values{}
	query.Set("id", txID)

	body, err := c.get(ctx, "/tx", query)
	if err != nil {
		return nil, err
	}

	info := &StatusInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		return nil, ErrUpstreamUnavailable
	}
	return info, nil
}

// get issues a GET request under the retry policy. 4xx statuses become a
// *RejectedError right away; transient statuses and network errors consume
// the retry budget, after which ErrUpstreamUnavailable is returned.
func (c *Client) get(
	ctx context.Context, endpoint string, query url.Values,
) ([]byte, error) {
	reqURL := c.apiURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body []byte
	err := c.policy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set(apiKeyHeader, c.apiKey)

		status, respBody, err := c.send(req)
		if err != nil {
			log.WithError(err).WithField("endpoint", endpoint).
				Warn("network error calling swap service")
			return err
		}
		if status == http.StatusOK {
			body = respBody
			return nil
		}
		if status >= 400 && status < 500 {
			return &RejectedError{Status: status, Body: string(respBody)}
		}
		log.WithFields(log.Fields{
			"endpoint": endpoint,
			"status":   status,
		}).Warn("transient error calling swap service")
		return &statusError{status: status, body: string(respBody)}
	})
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			return nil, rejected
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).WithField("endpoint", endpoint).
			Error("swap service request failed after all attempts")
		return nil, ErrUpstreamUnavailable
	}
	return body, nil
}

// send runs the request through the circuit breaker and reads the whole
// answer.
func (c *Client) send(req *http.Request) (int, []byte, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return 0, nil, err
	}
	resp := res.(*response)
	return resp.status, resp.body, nil
}

type response struct {
	status int
	body   []byte
}

func pairQuery(pair Pair) url.Values {
	query := url.Values{}
	query.Set("from", pair.From)
	query.Set("fromNetwork", pair.FromNetwork)
	query.Set("to", pair.To)
	query.Set("toNetwork", pair.ToNetwork)
	return query
}
