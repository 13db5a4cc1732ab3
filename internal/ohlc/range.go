package ohlc

import (
	"math"

	"github.com/pkg/errors"
)

// Bound is the set of domain types an axis range can hold.
type Bound interface {
	~int64 | ~float64
}

// Range is an inclusive pair of bounds. Lower is never greater than Upper
// when built through NewRange.
type Range[T Bound] struct {
	Lower T
	Upper T
}

// DateRange is a range of calendar dates.
type DateRange = Range[Date]

// ValueRange is a range of prices.
type ValueRange = Range[float64]

// NewRange builds a range, clamping an inverted pair to lower == upper.
func NewRange[T Bound](lower, upper T) Range[T] {
	if upper < lower {
		upper = lower
	}
	return Range[T]{Lower: lower, Upper: upper}
}

// CheckedRange builds a range and rejects inverted or non-finite bounds.
func CheckedRange[T Bound](lower, upper T) (Range[T], error) {
	r := Range[T]{Lower: lower, Upper: upper}
	if !r.Valid() {
		return Range[T]{}, errors.Wrapf(ErrInvalidRange, "[%v, %v]", lower, upper)
	}
	return r, nil
}

// Span returns Upper - Lower.
func (r Range[T]) Span() T { return r.Upper - r.Lower }

// Contains reports whether v lies within the inclusive range.
func (r Range[T]) Contains(v T) bool { return v >= r.Lower && v <= r.Upper }

// Equal reports whether both bounds match.
func (r Range[T]) Equal(o Range[T]) bool { return r.Lower == o.Lower && r.Upper == o.Upper }

// Valid reports whether the bounds are finite and ordered.
func (r Range[T]) Valid() bool {
	lo, hi := float64(r.Lower), float64(r.Upper)
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return false
	}
	return r.Lower <= r.Upper
}

// Extend returns the smallest range containing both r and v.
func (r Range[T]) Extend(v T) Range[T] {
	if v < r.Lower {
		r.Lower = v
	}
	if v > r.Upper {
		r.Upper = v
	}
	return r
}

// Shift moves both bounds by delta.
func (r Range[T]) Shift(delta T) Range[T] {
	return Range[T]{Lower: r.Lower + delta, Upper: r.Upper + delta}
}
