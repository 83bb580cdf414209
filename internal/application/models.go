package application

import "time"

// Scope identifies the agency a service call operates on. It travels as an
// explicit value through every operation rather than hiding in ambient state.
type Scope struct {
	AgencyID string
}

// TimelineFilter narrows queries issued to the booking and unavailability
// repositories. From and To bound a half-open window when present.
type TimelineFilter struct {
	AgencyID   string
	ResourceID string
	From       *time.Time
	To         *time.Time
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	ResourceID string
	ClientID   string
	DriverID   *string
	Title      string
	Notes      *string
	Start      time.Time
	End        time.Time
}

// Booking represents a persisted reservation of one resource over [Start, End).
type Booking struct {
	ID         string
	AgencyID   string
	ResourceID string
	ClientID   string
	DriverID   *string
	Title      string
	Notes      *string
	Start      time.Time
	End        time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ConflictWarning describes an overlap between two persisted bookings. It is
// advisory display information, not a rejection.
type ConflictWarning struct {
	BookingID     string
	WithBookingID string
	ResourceID    string
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Scope Scope
	Input BookingInput
}

// UpdateBookingParams wraps the data required to update an existing booking.
type UpdateBookingParams struct {
	Scope     Scope
	BookingID string
	Input     BookingInput
}

// ListBookingsParams wraps the data required to list bookings.
type ListBookingsParams struct {
	Scope      Scope
	ResourceID string
	From       *time.Time
	To         *time.Time
}

// EditAction identifies a scheduling board gesture applied to a booking.
type EditAction string

const (
	// EditActionMove shifts a booking by a duration, preserving its length.
	EditActionMove EditAction = "move"
	// EditActionResizeStart drags the start edge to a new time.
	EditActionResizeStart EditAction = "resize-start"
	// EditActionResizeEnd drags the end edge to a new time.
	EditActionResizeEnd EditAction = "resize-end"
	// EditActionReassign moves a booking to another resource row.
	EditActionReassign EditAction = "reassign"
)

// EditBookingParams wraps the data required to apply a board gesture.
// Delta applies to move, NewTime to the resize actions and NewResourceID to
// reassign.
type EditBookingParams struct {
	Scope         Scope
	BookingID     string
	Action        EditAction
	Delta         time.Duration
	NewTime       time.Time
	NewResourceID string
}

// EditResult reports the outcome of a board gesture. When the candidate
// collided, Applied is false, Booking holds the untouched original and
// Conflict names what it collided with.
type EditResult struct {
	Applied  bool
	Booking  Booking
	Conflict *ConflictError
}

// UnavailabilityInput captures caller provided one-off unavailability fields.
type UnavailabilityInput struct {
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
}

// UnavailabilitySpan represents a persisted one-off blocked period.
type UnavailabilitySpan struct {
	ID         string
	AgencyID   string
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecurringRuleInput captures caller provided weekly rule fields. Minutes are
// measured from midnight in the planner's timezone.
type RecurringRuleInput struct {
	ResourceID  string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
	Reason      string
}

// RecurringRule represents a persisted weekly unavailability rule.
type RecurringRule struct {
	ID          string
	AgencyID    string
	ResourceID  string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UnavailabilityWindow is one blocked period on a resource timeline: either a
// stored one-off span or a single occurrence derived from a recurring rule.
// Derived occurrences carry a deterministic id of the form
// "ru:<ruleId>:<yyyy-mm-dd>".
type UnavailabilityWindow struct {
	ID         string
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
	Recurring  bool
}

// CreateSpanParams wraps the data required to create a one-off span.
type CreateSpanParams struct {
	Scope Scope
	Input UnavailabilityInput
}

// CreateRuleParams wraps the data required to create a recurring rule.
type CreateRuleParams struct {
	Scope Scope
	Input RecurringRuleInput
}

// ListWindowsParams wraps the data required to list unavailability windows
// over a query window. Both bounds are required.
type ListWindowsParams struct {
	Scope      Scope
	ResourceID string
	From       time.Time
	To         time.Time
}

// ResourceInput captures caller provided resource fields.
type ResourceInput struct {
	Name         string
	Kind         string
	Registration *string
}

// Resource represents a catalog entry for a rentable vehicle or machine.
type Resource struct {
	ID           string
	AgencyID     string
	Name         string
	Kind         string
	Registration *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateResourceParams wraps the data required to create a resource.
type CreateResourceParams struct {
	Scope Scope
	Input ResourceInput
}

// UpdateResourceParams wraps the data required to update a resource.
type UpdateResourceParams struct {
	Scope      Scope
	ResourceID string
	Input      ResourceInput
}

// FreeSlot is an open period suggested to the planner.
type FreeSlot struct {
	Start time.Time
	End   time.Time
}

// FreeSlotsParams wraps the data required to list free slots for one resource
// on one day.
type FreeSlotsParams struct {
	Scope      Scope
	ResourceID string
	Day        time.Time
}

// AlternativeResourceParams wraps the data required to find a substitute
// resource free over [Start, End).
type AlternativeResourceParams struct {
	Scope      Scope
	ResourceID string
	Start      time.Time
	End        time.Time
}
