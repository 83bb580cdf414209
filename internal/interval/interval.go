package interval

import (
	"errors"
	"time"
)

// ErrInvalid indicates an interval whose start does not precede its end.
var ErrInvalid = errors.New("interval: start must be before end")

// Interval is a half-open time range [Start, End). The end instant is
// excluded so back-to-back intervals never overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New constructs an interval, rejecting start >= end.
func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalid
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap.
//
// Every overlap decision in the planner goes through this predicate.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Overlaps reports whether the receiver intersects other.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// Contains reports whether t falls inside the half-open range.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Shift returns a copy moved by delta. Duration is preserved exactly.
func (i Interval) Shift(delta time.Duration) Interval {
	return Interval{Start: i.Start.Add(delta), End: i.End.Add(delta)}
}
