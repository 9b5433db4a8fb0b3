package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stellar/go-stellar-sdk/support/log"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 100 * time.Millisecond
	DefaultRetryMaxDelay = 2 * time.Second
)

type FaultTolerantClientOptions struct {
	// HTTPClient is the client used to send each attempt. Defaults to DefaultClient().
	HTTPClient HTTPClientInterface
	Attempts   uint
	Delay      time.Duration
	MaxDelay   time.Duration
}

// FaultTolerantClient retries requests that fail at the transport level (connection refused, reset, DNS, ...).
// Responses are never retried, whatever their status code: interpreting them is up to the caller.
type FaultTolerantClient struct {
	httpClient HTTPClientInterface
	attempts   uint
	delay      time.Duration
	maxDelay   time.Duration
}

func NewFaultTolerantClient(opts FaultTolerantClientOptions) *FaultTolerantClient {
	c := &FaultTolerantClient{
		httpClient: opts.HTTPClient,
		attempts:   opts.Attempts,
		delay:      opts.Delay,
		maxDelay:   opts.MaxDelay,
	}
	if c.httpClient == nil {
		c.httpClient = DefaultClient()
	}
	if c.attempts == 0 {
		c.attempts = DefaultRetryAttempts
	}
	if c.delay == 0 {
		c.delay = DefaultRetryDelay
	}
	if c.maxDelay == 0 {
		c.maxDelay = DefaultRetryMaxDelay
	}

	return c
}

func (c *FaultTolerantClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	attempts := c.attempts
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		// the body can't be replayed
		attempts = 1
	}

	attempt := 0
	resp, err := retry.DoWithData(
		func() (*http.Response, error) {
			attemptReq := req
			if attempt > 0 && req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, retry.Unrecoverable(fmt.Errorf("rewinding request body: %w", bodyErr))
				}
				attemptReq = req.Clone(ctx)
				attemptReq.Body = body
			}
			attempt++

			return c.httpClient.Do(attemptReq)
		},
		retry.Attempts(attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(c.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warnf("HTTP %s %s failed on attempt %d/%d: %v", req.Method, req.URL.Redacted(), n+1, attempts, err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("sending %s request to %s: %w", req.Method, req.URL.Redacted(), err)
	}

	return resp, nil
}

func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

var _ HTTPClientInterface = (*FaultTolerantClient)(nil)
