package scheduler

import (
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/interval"
)

// CollisionKind identifies what kind of timeline entry blocked a candidate.
type CollisionKind string

const (
	// KindBooking indicates the candidate overlaps an existing intervention.
	KindBooking CollisionKind = "booking"
	// KindUnavailability indicates the candidate overlaps a one-off unavailability span.
	KindUnavailability CollisionKind = "unavailability"
	// KindRecurringUnavailability indicates the candidate overlaps an expanded weekly rule occurrence.
	KindRecurringUnavailability CollisionKind = "recurring-unavailability"
)

// Unavailability is the snapshot of a blocked window on a resource timeline,
// either a one-off span or one expanded occurrence of a recurring rule.
type Unavailability struct {
	ID         string
	ResourceID string
	Start      time.Time
	End        time.Time
	Recurring  bool
}

// Collision details the first timeline entry found to overlap a candidate.
// Callers use the id and kind to explain the rejection to operators.
type Collision struct {
	WithID string
	Kind   CollisionKind
	Start  time.Time
	End    time.Time
}

// ValidateBooking decides whether a candidate intervention may be committed
// to its resource's timeline. Existing bookings are checked first, then
// unavailabilities (one-off and expanded recurring). The candidate's own id
// is excluded so updates do not collide with themselves. A nil result means
// the candidate is legal.
//
// The scan is deterministic for a given input ordering: the first colliding
// entry is returned.
func ValidateBooking(candidate Booking, bookings []Booking, unavailabilities []Unavailability) *Collision {
	for _, existing := range bookings {
		if existing.ID == candidate.ID || existing.ResourceID != candidate.ResourceID {
			continue
		}
		if interval.Overlaps(candidate.Start, candidate.End, existing.Start, existing.End) {
			return &Collision{WithID: existing.ID, Kind: KindBooking, Start: existing.Start, End: existing.End}
		}
	}
	return collideUnavailabilities(candidate.ResourceID, candidate.Start, candidate.End, "", unavailabilities)
}

// ValidateUnavailability is the symmetric gate for committing an
// unavailability span: a resource timeline is mutually exclusive, so new
// unavailability must not overlap bookings or other unavailability either.
func ValidateUnavailability(candidate Unavailability, bookings []Booking, unavailabilities []Unavailability) *Collision {
	for _, existing := range bookings {
		if existing.ResourceID != candidate.ResourceID {
			continue
		}
		if interval.Overlaps(candidate.Start, candidate.End, existing.Start, existing.End) {
			return &Collision{WithID: existing.ID, Kind: KindBooking, Start: existing.Start, End: existing.End}
		}
	}
	return collideUnavailabilities(candidate.ResourceID, candidate.Start, candidate.End, candidate.ID, unavailabilities)
}

func collideUnavailabilities(resourceID string, start, end time.Time, excludeID string, unavailabilities []Unavailability) *Collision {
	for _, existing := range unavailabilities {
		if existing.ResourceID != resourceID {
			continue
		}
		if excludeID != "" && existing.ID == excludeID {
			continue
		}
		if !interval.Overlaps(start, end, existing.Start, existing.End) {
			continue
		}
		kind := KindUnavailability
		if existing.Recurring {
			kind = KindRecurringUnavailability
		}
		return &Collision{WithID: existing.ID, Kind: kind, Start: existing.Start, End: existing.End}
	}
	return nil
}
