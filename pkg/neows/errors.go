package neows

import (
	"errors"
	"fmt"
)

// RateLimitMarker appears in the feed's error body once a key's quota is spent.
const RateLimitMarker = "OVER_RATE_LIMIT"

var (
	// ErrRateLimited reports HTTP 429 or a rate-limit marker in the response body.
	ErrRateLimited = errors.New("rate limited (429): wait or reduce calls with this key")

	// ErrMalformedResponse matches any MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed feed response")
)

// HTTPError reports any other non-success status.
type HTTPError struct {
	Status     int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Status, e.StatusText)
}

// MalformedResponseError reports a success body that is not valid JSON.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedResponse.Error(), e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMalformedResponse) match.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
