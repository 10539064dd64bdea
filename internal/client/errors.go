package client

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse reports a 2xx response whose body does not match the
// expected shape. Callers substitute a safe default instead of failing.
var ErrMalformedResponse = errors.New("malformed response from message API")

// TransportError is a network failure, timeout or non-2xx response from the
// message API.
type TransportError struct {
	Status int // 0 when the request never completed
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("message API transport error: %v", e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("message API returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("message API returned %d", e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
