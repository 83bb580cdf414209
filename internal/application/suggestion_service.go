package application

import (
	"context"
	"fmt"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/recurrence"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/scheduler"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/suggest"
)

// SuggestionService proposes free slots and substitute resources around a
// rejected interval. Proposals are computed from a snapshot and therefore
// advisory; committing one re-enters the normal gated write path.
type SuggestionService struct {
	bookings       BookingRepository
	unavailability UnavailabilityRepository
	resources      ResourceCatalog
	expander       *recurrence.Engine
	workStartHour  int
	workEndHour    int
}

// NewSuggestionService wires dependencies for suggestion operations. The
// working-hours window bounds the free-slot partition.
func NewSuggestionService(bookings BookingRepository, unavailability UnavailabilityRepository, resources ResourceCatalog, expander *recurrence.Engine, workStartHour, workEndHour int) *SuggestionService {
	if expander == nil {
		expander = recurrence.NewEngine(nil)
	}
	if workStartHour == 0 && workEndHour == 0 {
		workStartHour, workEndHour = 7, 19
	}
	return &SuggestionService{
		bookings:       bookings,
		unavailability: unavailability,
		resources:      resources,
		expander:       expander,
		workStartHour:  workStartHour,
		workEndHour:    workEndHour,
	}
}

// FreeSlots lists the 1-hour working-hours slots still open on the
// resource's day. Unavailability, recurring occurrences included, blocks a
// slot the same way a booking does.
func (s *SuggestionService) FreeSlots(ctx context.Context, params FreeSlotsParams) ([]FreeSlot, error) {
	if s == nil {
		return nil, fmt.Errorf("SuggestionService is nil")
	}

	vErr := &ValidationError{}
	if params.ResourceID == "" {
		vErr.add("resource_id", "resource is required")
	}
	if params.Day.IsZero() {
		vErr.add("day", "day is required")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	y, m, d := params.Day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, params.Day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	occupied, err := s.occupiedAsBookings(ctx, params.Scope, params.ResourceID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := suggest.FreeSlots(params.ResourceID, params.Day, s.workStartHour, s.workEndHour, occupied)
	if len(slots) == 0 {
		return nil, nil
	}

	out := make([]FreeSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, FreeSlot{Start: slot.Start, End: slot.End})
	}
	return out, nil
}

// AlternativeResource proposes the first resource in catalog order that is
// fully free over [Start, End), skipping the blocked resource itself.
func (s *SuggestionService) AlternativeResource(ctx context.Context, params AlternativeResourceParams) (Resource, bool, error) {
	if s == nil {
		return Resource{}, false, fmt.Errorf("SuggestionService is nil")
	}

	vErr := &ValidationError{}
	if params.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if params.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if !params.Start.IsZero() && !params.End.IsZero() && !params.Start.Before(params.End) {
		vErr.add("time", "start must be before end")
	}
	if vErr.HasErrors() {
		return Resource{}, false, vErr
	}

	catalog, err := s.resources.ListResources(ctx, params.Scope.AgencyID)
	if err != nil {
		if isNotFoundError(err) {
			return Resource{}, false, nil
		}
		return Resource{}, false, err
	}

	pool := make([]string, 0, len(catalog))
	byID := make(map[string]Resource, len(catalog))
	occupied := make(map[string][]scheduler.Booking, len(catalog))
	for _, resource := range catalog {
		pool = append(pool, resource.ID)
		byID[resource.ID] = resource
		if resource.ID == params.ResourceID {
			continue
		}
		entries, err := s.occupiedAsBookings(ctx, params.Scope, resource.ID, params.Start, params.End)
		if err != nil {
			return Resource{}, false, err
		}
		occupied[resource.ID] = entries
	}

	id, ok := suggest.FirstFreeAlternative(params.Start, params.End, params.ResourceID, pool, occupied)
	if !ok {
		return Resource{}, false, nil
	}
	return byID[id], true, nil
}

// occupiedAsBookings flattens the full occupancy of one resource into
// scheduler bookings so the suggestion engine treats blocked windows and
// real bookings alike.
func (s *SuggestionService) occupiedAsBookings(ctx context.Context, scope Scope, resourceID string, from, to time.Time) ([]scheduler.Booking, error) {
	snapshot, err := loadOccupancy(ctx, s.bookings, s.unavailability, s.expander, scope, resourceID, from, to)
	if err != nil {
		return nil, err
	}

	occupied := snapshot.bookings
	for _, blocked := range snapshot.unavailability {
		occupied = append(occupied, scheduler.Booking{
			ID:         blocked.ID,
			ResourceID: blocked.ResourceID,
			Start:      blocked.Start,
			End:        blocked.End,
		})
	}
	return occupied, nil
}
