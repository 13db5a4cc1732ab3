package ohlc

import (
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the layout used to print and parse calendar dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar date expressed as whole days since 1970-01-01 (epoch-day).
// It is the linear domain unit of the date axis.
type Date int64

var (
	// MinDate is the earliest date the chart can represent.
	MinDate = NewDate(1, time.January, 1)
	// MaxDate is the latest date the chart can represent.
	MaxDate = NewDate(9999, time.December, 31)
)

// NewDate returns the epoch-day of the given calendar date.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current local calendar date.
func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a date printed with DateLayout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse date %q", s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return time.Unix(int64(d)*secondsPerDay, 0).UTC() }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date { return d + Date(n) }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d > other }

// InDomain reports whether d lies within [MinDate, MaxDate].
func (d Date) InDomain() bool { return d >= MinDate && d <= MaxDate }

// ClampDomain limits d to [MinDate, MaxDate].
func (d Date) ClampDomain() Date {
	if d < MinDate {
		return MinDate
	}
	if d > MaxDate {
		return MaxDate
	}
	return d
}

func (d Date) String() string { return d.Time().Format(DateLayout) }
