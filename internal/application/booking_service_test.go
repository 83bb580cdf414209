package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/editor"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
)

type bookingRepoStub struct {
	booking   Booking
	created   Booking
	updated   Booking
	list      []Booking
	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func (s *bookingRepoStub) CreateBooking(ctx context.Context, booking Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = booking
	return nil
}

func (s *bookingRepoStub) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s.booking.ID == "" || s.booking.ID != id {
		return Booking{}, ErrNotFound
	}
	return s.booking, nil
}

func (s *bookingRepoStub) UpdateBooking(ctx context.Context, booking Booking) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = booking
	return nil
}

func (s *bookingRepoStub) DeleteBooking(ctx context.Context, id string) error {
	return s.deleteErr
}

func (s *bookingRepoStub) ListBookings(ctx context.Context, filter TimelineFilter) ([]Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Booking, len(s.list))
	copy(out, s.list)
	return out, nil
}

type unavailabilityRepoStub struct {
	spans        []UnavailabilitySpan
	rules        []RecurringRule
	createdSpan  UnavailabilitySpan
	createdRule  RecurringRule
	deletedSpans []string
	deletedRules []string
	createErr    error
	deleteErr    error
}

func (s *unavailabilityRepoStub) CreateSpan(ctx context.Context, span UnavailabilitySpan) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.createdSpan = span
	return nil
}

func (s *unavailabilityRepoStub) ListSpans(ctx context.Context, filter TimelineFilter) ([]UnavailabilitySpan, error) {
	out := make([]UnavailabilitySpan, len(s.spans))
	copy(out, s.spans)
	return out, nil
}

func (s *unavailabilityRepoStub) GetSpan(ctx context.Context, id string) (UnavailabilitySpan, error) {
	for _, span := range s.spans {
		if span.ID == id {
			return span, nil
		}
	}
	return UnavailabilitySpan{}, ErrNotFound
}

func (s *unavailabilityRepoStub) DeleteSpan(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedSpans = append(s.deletedSpans, id)
	return nil
}

func (s *unavailabilityRepoStub) CreateRule(ctx context.Context, rule RecurringRule) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.createdRule = rule
	return nil
}

func (s *unavailabilityRepoStub) ListRules(ctx context.Context, agencyID, resourceID string) ([]RecurringRule, error) {
	out := make([]RecurringRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *unavailabilityRepoStub) GetRule(ctx context.Context, id string) (RecurringRule, error) {
	for _, rule := range s.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return RecurringRule{}, ErrNotFound
}

func (s *unavailabilityRepoStub) DeleteRule(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedRules = append(s.deletedRules, id)
	return nil
}

type resourceCatalogStub struct {
	resources []Resource
	err       error
}

func (s *resourceCatalogStub) GetResource(ctx context.Context, id string) (Resource, error) {
	if s.err != nil {
		return Resource{}, s.err
	}
	for _, resource := range s.resources {
		if resource.ID == id {
			return resource, nil
		}
	}
	return Resource{}, ErrNotFound
}

func (s *resourceCatalogStub) ListResources(ctx context.Context, agencyID string) ([]Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Resource, len(s.resources))
	copy(out, s.resources)
	return out, nil
}

// monday is 2025-03-10, a Monday, used as the reference day across tests.
var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func testScope() Scope {
	return Scope{AgencyID: "agency-1"}
}

func testCatalog() *resourceCatalogStub {
	return &resourceCatalogStub{resources: []Resource{
		{ID: "R1", AgencyID: "agency-1", Name: "Crane A", Kind: "machine"},
		{ID: "R2", AgencyID: "agency-1", Name: "Crane B", Kind: "machine"},
		{ID: "R3", AgencyID: "agency-1", Name: "Truck C", Kind: "vehicle"},
	}}
}

func newBookingService(bookings *bookingRepoStub, unavailability *unavailabilityRepoStub, catalog *resourceCatalogStub) *BookingService {
	return NewBookingService(bookings, unavailability, catalog, nil, editor.Grid{SlotMinutes: 15},
		func() string { return "generated-id" },
		func() time.Time { return at(8, 0) },
	)
}

func validInput() BookingInput {
	return BookingInput{
		ResourceID: "R1",
		ClientID:   "client-1",
		Title:      "Site works",
		Start:      at(9, 0),
		End:        at(11, 0),
	}
}

func TestBookingService_CreateBooking_ValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newBookingService(&bookingRepoStub{}, &unavailabilityRepoStub{}, testCatalog())

	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Scope: testScope()})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"resource_id", "client_id", "title", "start", "end"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected field error for %q, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestBookingService_CreateBooking_RejectsInvertedInterval(t *testing.T) {
	t.Parallel()

	svc := newBookingService(&bookingRepoStub{}, &unavailabilityRepoStub{}, testCatalog())

	input := validInput()
	input.Start, input.End = input.End, input.Start
	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Scope: testScope(), Input: input})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time field error, got %v", vErr.FieldErrors)
	}
}

func TestBookingService_CreateBooking_RejectsUnknownResource(t *testing.T) {
	t.Parallel()

	svc := newBookingService(&bookingRepoStub{}, &unavailabilityRepoStub{}, testCatalog())

	input := validInput()
	input.ResourceID = "R99"
	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Scope: testScope(), Input: input})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["resource_id"]; !ok {
		t.Fatalf("expected resource_id field error, got %v", vErr.FieldErrors)
	}
}

func TestBookingService_CreateBooking_RejectsOverlapWithExistingBooking(t *testing.T) {
	t.Parallel()

	bookings := &bookingRepoStub{list: []Booking{
		{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", Start: at(9, 0), End: at(11, 0)},
	}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	input := validInput()
	input.Start, input.End = at(10, 0), at(12, 0)
	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Scope: testScope(), Input: input})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Kind != "booking" || conflict.WithID != "b1" {
		t.Fatalf("conflict = %+v", conflict)
	}
	if bookings.created.ID != "" {
		t.Fatalf("rejected booking must not be persisted, got %+v", bookings.created)
	}
}

func TestBookingService_CreateBooking_RejectsRecurringOccurrence(t *testing.T) {
	t.Parallel()

	unavailability := &unavailabilityRepoStub{rules: []RecurringRule{
		{ID: "rule-1", AgencyID: "agency-1", ResourceID: "R1", Weekday: time.Monday, StartMinute: 8 * 60, EndMinute: 9 * 60},
	}}
	svc := newBookingService(&bookingRepoStub{}, unavailability, testCatalog())

	input := validInput()
	input.Start, input.End = at(8, 30), at(9, 30)
	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Scope: testScope(), Input: input})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Kind != "recurring-unavailability" {
		t.Fatalf("conflict kind = %q", conflict.Kind)
	}
	if conflict.WithID != "ru:rule-1:2025-03-10" {
		t.Fatalf("conflict id = %q", conflict.WithID)
	}
}

func TestBookingService_CreateBooking_AllowsTouchingIntervals(t *testing.T) {
	t.Parallel()

	bookings := &bookingRepoStub{list: []Booking{
		{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", Start: at(9, 0), End: at(11, 0)},
	}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	input := validInput()
	input.Start, input.End = at(11, 0), at(12, 0)
	created, err := svc.CreateBooking(context.Background(), CreateBookingParams{Scope: testScope(), Input: input})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if created.ID != "generated-id" || created.AgencyID != "agency-1" {
		t.Fatalf("created = %+v", created)
	}
	if bookings.created.ID != "generated-id" {
		t.Fatalf("booking was not persisted: %+v", bookings.created)
	}
}

func TestBookingService_UpdateBooking_ExcludesOwnInterval(t *testing.T) {
	t.Parallel()

	existing := Booking{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", ClientID: "client-1", Title: "Site works", Start: at(9, 0), End: at(11, 0)}
	bookings := &bookingRepoStub{booking: existing, list: []Booking{existing}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	input := validInput()
	input.Start, input.End = at(10, 0), at(12, 0)
	updated, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{Scope: testScope(), BookingID: "b1", Input: input})
	if err != nil {
		t.Fatalf("UpdateBooking returned error: %v", err)
	}
	if !updated.Start.Equal(at(10, 0)) || !updated.End.Equal(at(12, 0)) {
		t.Fatalf("updated interval = %v-%v", updated.Start, updated.End)
	}
}

func TestBookingService_UpdateBooking_ScopeMismatchReadsAsMissing(t *testing.T) {
	t.Parallel()

	existing := Booking{ID: "b1", AgencyID: "agency-2", ResourceID: "R1", Start: at(9, 0), End: at(11, 0)}
	bookings := &bookingRepoStub{booking: existing}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	_, err := svc.UpdateBooking(context.Background(), UpdateBookingParams{Scope: testScope(), BookingID: "b1", Input: validInput()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingService_CreateBooking_MapsStoreOverlap(t *testing.T) {
	t.Parallel()

	bookings := &bookingRepoStub{createErr: &persistence.OverlapError{WithID: "b9", Kind: "booking"}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{Scope: testScope(), Input: validInput()})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.WithID != "b9" {
		t.Fatalf("conflict = %+v", conflict)
	}
}

func TestBookingService_ListBookings_ReportsPairwiseWarnings(t *testing.T) {
	t.Parallel()

	bookings := &bookingRepoStub{list: []Booking{
		{ID: "b2", AgencyID: "agency-1", ResourceID: "R1", Start: at(10, 0), End: at(12, 0)},
		{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", Start: at(9, 0), End: at(11, 0)},
		{ID: "b3", AgencyID: "agency-1", ResourceID: "R2", Start: at(9, 0), End: at(11, 0)},
	}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	listed, warnings, err := svc.ListBookings(context.Background(), ListBookingsParams{Scope: testScope()})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(listed) != 3 || listed[0].ID != "b1" {
		t.Fatalf("listed = %+v", listed)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %+v", warnings)
	}
	if warnings[0].BookingID != "b1" || warnings[0].WithBookingID != "b2" || warnings[0].ResourceID != "R1" {
		t.Fatalf("warning = %+v", warnings[0])
	}
}

func TestBookingService_EditBooking_MoveSnapsAndApplies(t *testing.T) {
	t.Parallel()

	existing := Booking{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", Start: at(10, 0), End: at(11, 0)}
	bookings := &bookingRepoStub{booking: existing, list: []Booking{existing}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	result, err := svc.EditBooking(context.Background(), EditBookingParams{
		Scope:     testScope(),
		BookingID: "b1",
		Action:    EditActionMove,
		Delta:     37 * time.Minute,
	})
	if err != nil {
		t.Fatalf("EditBooking returned error: %v", err)
	}
	if !result.Applied {
		t.Fatalf("edit was not applied: %+v", result)
	}
	// 10:37 snaps down to the 10:30 grid line; duration is preserved.
	if !result.Booking.Start.Equal(at(10, 30)) || !result.Booking.End.Equal(at(11, 30)) {
		t.Fatalf("edited interval = %v-%v", result.Booking.Start, result.Booking.End)
	}
	if !bookings.updated.Start.Equal(at(10, 30)) {
		t.Fatalf("persisted interval = %v", bookings.updated.Start)
	}
}

func TestBookingService_EditBooking_CollisionLeavesOriginalIntact(t *testing.T) {
	t.Parallel()

	existing := Booking{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", Start: at(9, 0), End: at(10, 0)}
	blocker := Booking{ID: "b2", AgencyID: "agency-1", ResourceID: "R1", Start: at(10, 0), End: at(11, 0)}
	bookings := &bookingRepoStub{booking: existing, list: []Booking{existing, blocker}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	result, err := svc.EditBooking(context.Background(), EditBookingParams{
		Scope:     testScope(),
		BookingID: "b1",
		Action:    EditActionResizeEnd,
		NewTime:   at(10, 30),
	})
	if err != nil {
		t.Fatalf("EditBooking returned error: %v", err)
	}
	if result.Applied {
		t.Fatalf("colliding edit must not apply: %+v", result)
	}
	if !result.Booking.Start.Equal(at(9, 0)) || !result.Booking.End.Equal(at(10, 0)) {
		t.Fatalf("original interval changed: %v-%v", result.Booking.Start, result.Booking.End)
	}
	if result.Conflict == nil || result.Conflict.WithID != "b2" || result.Conflict.Kind != "booking" {
		t.Fatalf("conflict = %+v", result.Conflict)
	}
	if bookings.updated.ID != "" {
		t.Fatalf("rejected edit must not persist, got %+v", bookings.updated)
	}
}

func TestBookingService_EditBooking_InvertedResizeIsValidationError(t *testing.T) {
	t.Parallel()

	existing := Booking{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", Start: at(9, 0), End: at(10, 0)}
	bookings := &bookingRepoStub{booking: existing, list: []Booking{existing}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	_, err := svc.EditBooking(context.Background(), EditBookingParams{
		Scope:     testScope(),
		BookingID: "b1",
		Action:    EditActionResizeStart,
		NewTime:   at(10, 30),
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time field error, got %v", vErr.FieldErrors)
	}
}

func TestBookingService_EditBooking_ReassignValidatesTargetTimeline(t *testing.T) {
	t.Parallel()

	existing := Booking{ID: "b1", AgencyID: "agency-1", ResourceID: "R1", Start: at(9, 0), End: at(10, 0)}
	bookings := &bookingRepoStub{booking: existing, list: []Booking{existing}}
	svc := newBookingService(bookings, &unavailabilityRepoStub{}, testCatalog())

	result, err := svc.EditBooking(context.Background(), EditBookingParams{
		Scope:         testScope(),
		BookingID:     "b1",
		Action:        EditActionReassign,
		NewResourceID: "R2",
	})
	if err != nil {
		t.Fatalf("EditBooking returned error: %v", err)
	}
	if !result.Applied || result.Booking.ResourceID != "R2" {
		t.Fatalf("result = %+v", result)
	}
	if !result.Booking.Start.Equal(at(9, 0)) || !result.Booking.End.Equal(at(10, 0)) {
		t.Fatalf("reassign must keep the interval, got %v-%v", result.Booking.Start, result.Booking.End)
	}
}
