package stream

import (
	"fmt"
	"math"
)

// Demand is the number of values a subscriber is willing to receive next.
// It is either a finite count (never negative) or unlimited.
// The zero value is None.
type Demand struct {
	n         int
	unlimited bool
}

var (
	// None is a finite demand of zero values.
	None = Demand{}

	// Unlimited requests every value the publisher produces.
	Unlimited = Demand{unlimited: true}
)

// Max returns a finite demand of n values.
// It panics if n is negative.
func Max(n int) Demand {
	if n < 0 {
		panic(fmt.Errorf("%w: %d", ErrNegativeDemand, n))
	}
	if n == math.MaxInt {
		return Unlimited
	}
	return Demand{n: n}
}

// Add returns the sum of two demands. Adding anything to Unlimited yields
// Unlimited; finite sums saturate instead of overflowing.
func (d Demand) Add(other Demand) Demand {
	if d.unlimited || other.unlimited {
		return Unlimited
	}
	if d.n > math.MaxInt-other.n {
		return Unlimited
	}
	return Max(d.n + other.n)
}

// Sub returns d minus other. Unlimited minus anything stays Unlimited,
// finite results saturate at zero.
func (d Demand) Sub(other Demand) Demand {
	if d.unlimited {
		return Unlimited
	}
	if other.unlimited || other.n >= d.n {
		return None
	}
	return Demand{n: d.n - other.n}
}

// Positive reports whether the demand permits at least one more delivery.
func (d Demand) Positive() bool {
	return d.unlimited || d.n > 0
}

// IsUnlimited reports whether the demand is Unlimited.
func (d Demand) IsUnlimited() bool {
	return d.unlimited
}

// Max returns the finite count and true, or 0 and false for Unlimited.
func (d Demand) Max() (int, bool) {
	if d.unlimited {
		return 0, false
	}
	return d.n, true
}

// Compare returns -1, 0 or +1 depending on whether d is less than, equal to
// or greater than other. Unlimited is greater than every finite demand.
func (d Demand) Compare(other Demand) int {
	switch {
	case d.unlimited && other.unlimited:
		return 0
	case d.unlimited:
		return 1
	case other.unlimited:
		return -1
	case d.n < other.n:
		return -1
	case d.n > other.n:
		return 1
	default:
		return 0
	}
}

// AssertNonZero panics if the demand is not positive.
// Requesting zero values is a caller bug, not a runtime condition.
func (d Demand) AssertNonZero() {
	if !d.Positive() {
		panic(fmt.Errorf("%w: %s", ErrInvalidDemand, d))
	}
}

// String implements fmt.Stringer.
func (d Demand) String() string {
	if d.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("max(%d)", d.n)
}
