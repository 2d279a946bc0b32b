package alphavantage

import (
	"errors"
	"fmt"
)

// Outcome classifies a single provider call.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRateLimited
	OutcomeHTTPError
	OutcomeNetworkError
	OutcomeMalformedPayload
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeMalformedPayload:
		return "malformed_payload"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var (
	// ErrRateLimited means the provider answered 200 without the report's key,
	// which is how it signals throttling.
	ErrRateLimited = errors.New("alphavantage: rate limited")

	// ErrNetwork means the request did not complete (DNS, connection, timeout).
	ErrNetwork = errors.New("alphavantage: network failure")

	// ErrMalformedPayload means the report's key was present but the data
	// under it could not be used.
	ErrMalformedPayload = errors.New("alphavantage: malformed payload")
)

// HTTPError is returned by Result.Err for non-200 responses.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("alphavantage: unexpected status %d", e.StatusCode)
}

// Result is the tagged outcome of one provider call. Payload is only
// meaningful when Outcome is OutcomeSuccess.
type Result[T any] struct {
	Outcome    Outcome
	Payload    T
	StatusCode int    // set for OutcomeHTTPError
	Notice     string // provider message for OutcomeRateLimited, if any
	Cause      error  // underlying error for OutcomeNetworkError and OutcomeMalformedPayload
}

// Ok reports whether the call succeeded.
func (r Result[T]) Ok() bool {
	return r.Outcome == OutcomeSuccess
}

// Err returns nil on success and a classified error otherwise, suitable for
// logging and errors.Is/As checks.
func (r Result[T]) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeRateLimited:
		if r.Notice != "" {
			return fmt.Errorf("%w: %s", ErrRateLimited, r.Notice)
		}
		return ErrRateLimited
	case OutcomeHTTPError:
		return &HTTPError{StatusCode: r.StatusCode}
	case OutcomeNetworkError:
		return wrapCause(ErrNetwork, r.Cause)
	default:
		return wrapCause(ErrMalformedPayload, r.Cause)
	}
}

func wrapCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

func success[T any](payload T) Result[T] {
	return Result[T]{Outcome: OutcomeSuccess, Payload: payload}
}

func rateLimited[T any](n notice) Result[T] {
	return Result[T]{Outcome: OutcomeRateLimited, Notice: n.String()}
}

func malformed[T any](cause error) Result[T] {
	return Result[T]{Outcome: OutcomeMalformedPayload, Cause: cause}
}

// Failed builds a non-success result. It lets test doubles and callers outside
// this package produce the same shapes the HTTP client does.
func Failed[T any](outcome Outcome, cause error) Result[T] {
	r := Result[T]{Outcome: outcome, Cause: cause}
	var httpErr *HTTPError
	if errors.As(cause, &httpErr) {
		r.StatusCode = httpErr.StatusCode
	}
	return r
}

// Succeeded wraps payload in a success result.
func Succeeded[T any](payload T) Result[T] {
	return success(payload)
}
