package cipapi

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a failure of the service itself, as opposed to a
// lookup that simply found nothing.
var ErrUnavailable = errors.New("cipapi unavailable")

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code          int
	RequestNumber string
	Body          string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d for request %s", ErrUnavailable, e.Code, e.RequestNumber)
	}
	return fmt.Sprintf("%s: status %d for request %s: %s", ErrUnavailable, e.Code, e.RequestNumber, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnavailable }
