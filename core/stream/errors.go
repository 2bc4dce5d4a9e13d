package stream

import "errors"

var (
	// ErrInvalidDemand is the panic cause when a subscription is asked for
	// zero or negative demand.
	ErrInvalidDemand = errors.New("demand must be greater than zero")

	// ErrNegativeDemand is the panic cause when a finite demand is built from a negative count.
	ErrNegativeDemand = errors.New("demand must not be negative")
)
