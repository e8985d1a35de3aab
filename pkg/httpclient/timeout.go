package httpclient

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single request when no explicit timeout is configured.
const DefaultTimeout = 10 * time.Second

// ErrTimeout reports that the request did not complete before the deadline.
var ErrTimeout = errors.New("request timed out")

// TransportError wraps a network-layer failure other than a timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeBoundedFetcher races each request against a wall-clock timer.
// Whichever finishes first decides the outcome; the loser is always released.
type TimeBoundedFetcher struct {
	client  Client
	timeout time.Duration
}

// NewTimeBoundedFetcher wraps client with a per-request deadline.
// A nil client defaults to a resty transport; a non-positive timeout to DefaultTimeout.
func NewTimeBoundedFetcher(client Client, timeout time.Duration) *TimeBoundedFetcher {
	if client == nil {
		client = NewRestyClient(0)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TimeBoundedFetcher{client: client, timeout: timeout}
}

// Timeout returns the configured per-request deadline.
func (f *TimeBoundedFetcher) Timeout() time.Duration {
	return f.timeout
}

type fetchResult struct {
	resp Response
	err  error
}

// Get issues one GET. It fails with ErrTimeout when the timer fires first,
// with *TransportError when the transport fails, and with ctx.Err() when the
// caller's context ends first.
func (f *TimeBoundedFetcher) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	// Buffered so the request goroutine can always deliver and exit after losing the race.
	done := make(chan fetchResult, 1)
	go func() {
		resp, err := f.client.Get(reqCtx, url, headers)
		done <- fetchResult{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &TransportError{Err: res.err}
		}
		return res.resp, nil
	case <-timer.C:
		cancel()
		return nil, ErrTimeout
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
}
