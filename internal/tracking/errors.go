package tracking

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a click event lacks a required field.
	ErrMissingField = errors.New("click event missing required field")
	// ErrNoEndpoint is returned when a dispatcher is built without an endpoint.
	ErrNoEndpoint = errors.New("click tracking endpoint not configured")
	// ErrClosed is reported for events tracked after Close.
	ErrClosed = errors.New("click dispatcher closed")
)

// DeliveryError describes a click event the collector did not accept. It
// covers non-2xx responses as well as connection failures and timeouts.
type DeliveryError struct {
	StatusCode int    // 0 when no response was received
	Body       string // truncated response body for non-2xx responses
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("click delivery failed: http %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("click delivery failed: http %d", e.StatusCode)
	}
	return fmt.Sprintf("click delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
