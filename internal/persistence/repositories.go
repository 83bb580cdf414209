package persistence

import (
	"context"
	"time"
)

// TimelineFilter narrows booking and unavailability queries. From/To bound a
// half-open window [From, To): a record matches when it overlaps the window.
type TimelineFilter struct {
	AgencyID   string
	ResourceID string
	From       *time.Time
	To         *time.Time
}

// ResourceRepository exposes CRUD operations for the resource catalog.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	UpdateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	ListResources(ctx context.Context, agencyID string) ([]Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

// BookingRepository stores interventions. Create and Update enforce the
// per-resource no-overlap invariant inside the writing transaction and
// return *OverlapError when it would be violated.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter TimelineFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// UnavailabilityRepository stores one-off spans and weekly recurring rules.
// Span writes run the same commit-time exclusion guard as bookings.
type UnavailabilityRepository interface {
	CreateSpan(ctx context.Context, span UnavailabilitySpan) error
	GetSpan(ctx context.Context, id string) (UnavailabilitySpan, error)
	ListSpans(ctx context.Context, filter TimelineFilter) ([]UnavailabilitySpan, error)
	DeleteSpan(ctx context.Context, id string) error

	CreateRule(ctx context.Context, rule RecurringRule) error
	GetRule(ctx context.Context, id string) (RecurringRule, error)
	ListRules(ctx context.Context, agencyID, resourceID string) ([]RecurringRule, error)
	DeleteRule(ctx context.Context, id string) error
}
