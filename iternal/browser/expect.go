package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const pollInterval = 100 * time.Millisecond

// AssertionError is returned when an expectation does not hold before its
// timeout. Last is the most recent value observed, if any.
type AssertionError struct {
	Expectation string
	Last        string
	Timeout     time.Duration
	Err         error
}

func (e *AssertionError) Error() string {
	msg := "expected " + e.Expectation
	if e.Timeout > 0 {
		msg += fmt.Sprintf(" within %s", e.Timeout)
	}
	if e.Last != "" {
		msg += fmt.Sprintf(", last seen %q", e.Last)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// IsAssertion reports whether err is, or wraps, an AssertionError.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

// checkFunc reports whether a condition holds and what was observed.
type checkFunc func(ctx context.Context) (ok bool, observed string, err error)

// eventually re-runs check until it holds or timeout expires. Errors from
// check are treated as "not yet" and the last one is kept for the report.
func eventually(ctx context.Context, timeout time.Duration, expectation string, check checkFunc) error {
	deadline := time.Now().Add(timeout)
	var last string
	var lastErr error
	for {
		ok, observed, err := check(ctx)
		if err == nil && ok {
			return nil
		}
		last, lastErr = observed, err
		if ctx.Err() != nil {
			return &AssertionError{Expectation: expectation, Last: last, Timeout: timeout, Err: ctx.Err()}
		}
		if !time.Now().Before(deadline) {
			return &AssertionError{Expectation: expectation, Last: last, Timeout: timeout, Err: lastErr}
		}
		select {
		case <-ctx.Done():
		case <-time.After(pollInterval):
		}
	}
}
