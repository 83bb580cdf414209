package scheduler

import (
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/interval"
)

// Booking is the snapshot of an intervention the engine reasons about.
// It carries only what conflict arithmetic needs; the application layer
// owns the full record.
type Booking struct {
	ID         string
	ResourceID string
	Start      time.Time
	End        time.Time
}

// Conflict is a detected pairwise overlap between two bookings that share a
// resource. Conflicts are transient display/audit values, recomputed from a
// working set on demand.
type Conflict struct {
	A          Booking
	B          Booking
	ResourceID string
}

// DetectConflicts scans an in-memory working set (e.g. the bookings visible
// in a day or week view) and reports every unordered pair that shares a
// resource and overlaps in time.
//
// This is deliberately a different code path from ValidateBooking: the
// validator gates commits, while the detector audits an already-materialised
// set and must tolerate sets that contain conflicts (persistence may not yet
// have enforced atomicity when the snapshot was taken). The scan is the
// naive O(n²) pairing, fine at day/week-view scale; conflicts are emitted in
// outer-loop insertion order.
func DetectConflicts(bookings []Booking) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(bookings); i++ {
		for j := i + 1; j < len(bookings); j++ {
			a, b := bookings[i], bookings[j]
			if a.ResourceID != b.ResourceID {
				continue
			}
			if !interval.Overlaps(a.Start, a.End, b.Start, b.End) {
				continue
			}
			conflicts = append(conflicts, Conflict{A: a, B: b, ResourceID: a.ResourceID})
		}
	}
	return conflicts
}
