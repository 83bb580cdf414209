package application

import (
	"context"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/recurrence"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/scheduler"
)

// occupancy is a snapshot of everything occupying one resource timeline over
// a query window: persisted bookings plus one-off spans plus occurrences
// derived from recurring rules. The commit gates validate candidates against
// a fresh snapshot; the store re-checks inside the writing transaction to
// close the read-then-write race.
type occupancy struct {
	bookings       []scheduler.Booking
	unavailability []scheduler.Unavailability
}

func loadOccupancy(ctx context.Context, bookings BookingRepository, unavailability UnavailabilityRepository, expander *recurrence.Engine, scope Scope, resourceID string, from, to time.Time) (occupancy, error) {
	filter := TimelineFilter{
		AgencyID:   scope.AgencyID,
		ResourceID: resourceID,
		From:       &from,
		To:         &to,
	}

	var snapshot occupancy

	persisted, err := bookings.ListBookings(ctx, filter)
	if err != nil && !isNotFoundError(err) {
		return occupancy{}, err
	}
	for _, booking := range persisted {
		snapshot.bookings = append(snapshot.bookings, toSchedulerBooking(booking))
	}

	spans, err := unavailability.ListSpans(ctx, filter)
	if err != nil && !isNotFoundError(err) {
		return occupancy{}, err
	}
	for _, span := range spans {
		snapshot.unavailability = append(snapshot.unavailability, scheduler.Unavailability{
			ID:         span.ID,
			ResourceID: span.ResourceID,
			Start:      span.Start,
			End:        span.End,
			Recurring:  false,
		})
	}

	derived, err := expandRules(ctx, unavailability, expander, scope, resourceID, from, to)
	if err != nil {
		return occupancy{}, err
	}
	for _, window := range derived {
		snapshot.unavailability = append(snapshot.unavailability, scheduler.Unavailability{
			ID:         window.ID,
			ResourceID: window.ResourceID,
			Start:      window.Start,
			End:        window.End,
			Recurring:  true,
		})
	}

	return snapshot, nil
}

// expandRules materialises recurring rule occurrences overlapping [from, to).
func expandRules(ctx context.Context, unavailability UnavailabilityRepository, expander *recurrence.Engine, scope Scope, resourceID string, from, to time.Time) ([]UnavailabilityWindow, error) {
	rules, err := unavailability.ListRules(ctx, scope.AgencyID, resourceID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}

	converted := make([]recurrence.Rule, 0, len(rules))
	for _, rule := range rules {
		converted = append(converted, recurrence.Rule{
			ID:          rule.ID,
			ResourceID:  rule.ResourceID,
			Weekday:     rule.Weekday,
			StartMinute: rule.StartMinute,
			EndMinute:   rule.EndMinute,
			Reason:      rule.Reason,
		})
	}

	spans, err := expander.Expand(converted, from, to)
	if err != nil {
		return nil, err
	}

	windows := make([]UnavailabilityWindow, 0, len(spans))
	for _, span := range spans {
		windows = append(windows, UnavailabilityWindow{
			ID:         span.Key(),
			ResourceID: span.ResourceID,
			Start:      span.Start,
			End:        span.End,
			Reason:     span.Reason,
			Recurring:  true,
		})
	}
	return windows, nil
}

func toSchedulerBooking(booking Booking) scheduler.Booking {
	return scheduler.Booking{
		ID:         booking.ID,
		ResourceID: booking.ResourceID,
		Start:      booking.Start,
		End:        booking.End,
	}
}

func conflictFromCollision(collision *scheduler.Collision) *ConflictError {
	if collision == nil {
		return nil
	}
	return &ConflictError{
		Kind:   string(collision.Kind),
		WithID: collision.WithID,
		Start:  collision.Start,
		End:    collision.End,
	}
}
