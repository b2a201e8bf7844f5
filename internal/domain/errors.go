package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the bridge. Validation and translation errors are
// detected before any broker call; broker-originated failures are wrapped in
// BrokerError and never reinterpreted or retried by the core.
var (
	// ErrInvalidRequest marks malformed or missing request fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedOrderKind marks an order kind outside the known set.
	// It is a protocol mismatch on the caller's side, not a transient fault.
	ErrUnsupportedOrderKind = errors.New("unsupported order kind")

	// ErrInvariant marks a defensive internal check failure. It indicates a
	// bug in the bridge, not a caller error.
	ErrInvariant = errors.New("invariant violation")

	// ErrQuoteTimeout marks a quote wait that exceeded its bound. Callers may
	// retry.
	ErrQuoteTimeout = errors.New("quote request timed out")
)

// BrokerError wraps an error originating from the broker component. The
// bridge surfaces it verbatim.
type BrokerError struct {
	Broker string
	Err    error
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("broker %s: %v", e.Broker, e.Err)
}

func (e *BrokerError) Unwrap() error { return e.Err }
