// Package editor turns interactive edit gestures (drag to move, drag an edge
// to resize, drop onto another row to reassign) into candidate intervals.
// Candidates are immutable values; nothing is applied to a stored booking
// until the overlap validator has accepted the candidate.
package editor

import (
	"errors"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/scheduler"
)

// DefaultSlotMinutes is the planning grid granularity used when a Grid is
// constructed with a zero slot size.
const DefaultSlotMinutes = 15

// ErrInvertedInterval indicates a resize gesture that would produce
// start >= end. Such edits are rejected before any overlap check.
var ErrInvertedInterval = errors.New("editor: start must remain before end")

// Grid describes the snapping configuration of the planning surface.
type Grid struct {
	SlotMinutes int
}

func (g Grid) slot() time.Duration {
	minutes := g.SlotMinutes
	if minutes <= 0 {
		minutes = DefaultSlotMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Snap rounds a raw instant to the nearest grid line, half-up. Snapping is
// idempotent: an aligned instant is returned unchanged.
func (g Grid) Snap(t time.Time) time.Time {
	return t.Round(g.slot())
}

// PendingEdit pairs the untouched original booking with the transformed
// candidate. The original is kept so a rejected edit can be reverted and the
// attempted interval surfaced to the operator.
type PendingEdit struct {
	Original  scheduler.Booking
	Candidate scheduler.Booking
}

// Move shifts the whole booking by delta, snapping the landing position to
// the grid. Duration is preserved exactly.
func Move(booking scheduler.Booking, delta time.Duration, grid Grid) PendingEdit {
	duration := booking.End.Sub(booking.Start)
	candidate := booking
	candidate.Start = grid.Snap(booking.Start.Add(delta))
	candidate.End = candidate.Start.Add(duration)
	return PendingEdit{Original: booking, Candidate: candidate}
}

// ResizeLeft moves only the start bound to the snapped target instant.
func ResizeLeft(booking scheduler.Booking, newStart time.Time, grid Grid) (PendingEdit, error) {
	snapped := grid.Snap(newStart)
	if !snapped.Before(booking.End) {
		return PendingEdit{}, ErrInvertedInterval
	}
	candidate := booking
	candidate.Start = snapped
	return PendingEdit{Original: booking, Candidate: candidate}, nil
}

// ResizeRight moves only the end bound to the snapped target instant.
func ResizeRight(booking scheduler.Booking, newEnd time.Time, grid Grid) (PendingEdit, error) {
	snapped := grid.Snap(newEnd)
	if !booking.Start.Before(snapped) {
		return PendingEdit{}, ErrInvertedInterval
	}
	candidate := booking
	candidate.End = snapped
	return PendingEdit{Original: booking, Candidate: candidate}, nil
}

// Reassign retargets the booking to another resource, keeping its interval.
// The candidate is a full new timeline entry for the target resource and is
// validated against that resource's timeline.
func Reassign(booking scheduler.Booking, resourceID string) PendingEdit {
	candidate := booking
	candidate.ResourceID = resourceID
	return PendingEdit{Original: booking, Candidate: candidate}
}

// Outcome reports how a pending edit was resolved. When Applied is false the
// stored booking was left fully intact; Rejected carries the candidate
// interval so the caller can flag it (e.g. a timed visual pulse), and
// Collision explains what blocked it.
type Outcome struct {
	Applied   bool
	Booking   scheduler.Booking
	Rejected  *scheduler.Booking
	Collision *scheduler.Collision
}

// Accept resolves the edit with the candidate committed.
func (e PendingEdit) Accept() Outcome {
	return Outcome{Applied: true, Booking: e.Candidate}
}

// Revert resolves the edit with the original untouched.
func (e PendingEdit) Revert(collision *scheduler.Collision) Outcome {
	rejected := e.Candidate
	return Outcome{Applied: false, Booking: e.Original, Rejected: &rejected, Collision: collision}
}
