// Package suggest proposes ways out of a scheduling conflict: free slots on
// the blocked resource's day and alternative resources that can absorb the
// candidate interval. Suggestions are advisory; callers re-validate every
// proposal through the overlap validator before committing.
package suggest

import (
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/interval"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/scheduler"
)

// FreeSlots partitions the working-hours window [workStartHour, workEndHour)
// of day into 1-hour steps and returns every step that does not overlap an
// existing booking for the resource. The day is interpreted in day's own
// location.
func FreeSlots(resourceID string, day time.Time, workStartHour, workEndHour int, bookings []scheduler.Booking) []interval.Interval {
	if workStartHour >= workEndHour {
		return nil
	}

	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())

	var free []interval.Interval
	for hour := workStartHour; hour < workEndHour; hour++ {
		slotStart := midnight.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)
		if !slotBlocked(resourceID, slotStart, slotEnd, bookings) {
			free = append(free, interval.Interval{Start: slotStart, End: slotEnd})
		}
	}
	return free
}

func slotBlocked(resourceID string, start, end time.Time, bookings []scheduler.Booking) bool {
	for _, booking := range bookings {
		if booking.ResourceID != resourceID {
			continue
		}
		if interval.Overlaps(start, end, booking.Start, booking.End) {
			return true
		}
	}
	return false
}

// FirstFreeAlternative returns the first resource in pool order, other than
// the blocked candidate's own resource, with no booking overlapping
// [start, end). The pool order is stable so repeated calls over the same
// snapshot propose the same resource.
func FirstFreeAlternative(start, end time.Time, resourceID string, pool []string, bookingsByResource map[string][]scheduler.Booking) (string, bool) {
	for _, candidate := range pool {
		if candidate == resourceID {
			continue
		}
		if !slotBlocked(candidate, start, end, bookingsByResource[candidate]) {
			return candidate, true
		}
	}
	return "", false
}
