package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/editor"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/recurrence"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/scheduler"
)

// BookingRepository captures the persistence interactions needed by the
// booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter TimelineFilter) ([]Booking, error)
}

// UnavailabilityRepository captures the persistence interactions needed for
// one-off spans and recurring rules.
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

// ResourceCatalog exposes resource lookup operations.
type ResourceCatalog interface {
	GetResource(ctx context.Context, id string) (Resource, error)
	ListResources(ctx context.Context, agencyID string) ([]Resource, error)
}

// BookingService orchestrates validation and persistence for booking
// operations. Writes run the commit gate: the candidate interval is checked
// against the resource's full occupancy, recurring occurrences included, and
// the first collision rejects the write.
type BookingService struct {
	bookings       BookingRepository
	unavailability UnavailabilityRepository
	resources      ResourceCatalog
	expander       *recurrence.Engine
	grid           editor.Grid
	idGenerator    func() string
	now            func() time.Time
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, unavailability UnavailabilityRepository, resources ResourceCatalog, expander *recurrence.Engine, grid editor.Grid, idGenerator func() string, now func() time.Time) *BookingService {
	if expander == nil {
		expander = recurrence.NewEngine(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:       bookings,
		unavailability: unavailability,
		resources:      resources,
		expander:       expander,
		grid:           grid,
		idGenerator:    idGenerator,
		now:            now,
	}
}

// CreateBooking validates the request and runs the commit gate before
// delegating to persistence.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	input := params.Input

	vErr := &ValidationError{}
	validateBookingCore(input, vErr)
	if vErr.HasErrors() {
		return Booking{}, vErr
	}

	if err := s.ensureResourceExists(ctx, input.ResourceID); err != nil {
		return Booking{}, err
	}

	createdAt := s.now()
	booking := Booking{
		ID:         s.idGenerator(),
		AgencyID:   params.Scope.AgencyID,
		ResourceID: input.ResourceID,
		ClientID:   input.ClientID,
		DriverID:   input.DriverID,
		Title:      strings.TrimSpace(input.Title),
		Notes:      input.Notes,
		Start:      input.Start,
		End:        input.End,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	if err := s.gate(ctx, params.Scope, toSchedulerBooking(booking)); err != nil {
		return Booking{}, err
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return Booking{}, mapRepoError(err)
	}
	return booking, nil
}

// UpdateBooking validates the new interval and runs the commit gate with the
// booking's own id excluded before updating persistence state.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}

	existing, err := s.getScoped(ctx, params.Scope, params.BookingID)
	if err != nil {
		return Booking{}, err
	}

	input := params.Input
	vErr := &ValidationError{}
	validateBookingCore(input, vErr)
	if vErr.HasErrors() {
		return Booking{}, vErr
	}

	if err := s.ensureResourceExists(ctx, input.ResourceID); err != nil {
		return Booking{}, err
	}

	updated := existing
	updated.ResourceID = input.ResourceID
	updated.ClientID = input.ClientID
	updated.DriverID = input.DriverID
	updated.Title = strings.TrimSpace(input.Title)
	updated.Notes = input.Notes
	updated.Start = input.Start
	updated.End = input.End
	updated.UpdatedAt = s.now()

	if err := s.gate(ctx, params.Scope, toSchedulerBooking(updated)); err != nil {
		return Booking{}, err
	}

	if err := s.bookings.UpdateBooking(ctx, updated); err != nil {
		return Booking{}, mapRepoError(err)
	}
	return updated, nil
}

// GetBooking retrieves a booking within the caller's agency scope.
func (s *BookingService) GetBooking(ctx context.Context, scope Scope, bookingID string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	return s.getScoped(ctx, scope, bookingID)
}

// DeleteBooking removes a booking within the caller's agency scope.
func (s *BookingService) DeleteBooking(ctx context.Context, scope Scope, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if _, err := s.getScoped(ctx, scope, bookingID); err != nil {
		return err
	}
	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// ListBookings enumerates bookings ordered by start time, with pairwise
// overlap warnings for the board display. Existing overlaps are reported, not
// rejected: data predating a rule change stays readable.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, []ConflictWarning, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("BookingService is nil")
	}

	filter := TimelineFilter{
		AgencyID:   params.Scope.AgencyID,
		ResourceID: params.ResourceID,
		From:       params.From,
		To:         params.To,
	}
	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	ordered := make([]Booking, len(bookings))
	copy(ordered, bookings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	return ordered, detectListConflicts(ordered), nil
}

// EditBooking applies a board gesture as an immutable pending edit: the
// candidate is snapped to the grid, gated against the resource occupancy and
// either accepted and persisted or reverted with the collision attached. A
// reverted gesture leaves the stored booking untouched.
func (s *BookingService) EditBooking(ctx context.Context, params EditBookingParams) (EditResult, error) {
	if s == nil {
		return EditResult{}, fmt.Errorf("BookingService is nil")
	}

	existing, err := s.getScoped(ctx, params.Scope, params.BookingID)
	if err != nil {
		return EditResult{}, err
	}

	pending, err := s.buildPendingEdit(ctx, existing, params)
	if err != nil {
		return EditResult{}, err
	}

	candidate := pending.Candidate
	collision, err := s.findCollision(ctx, params.Scope, candidate)
	if err != nil {
		return EditResult{}, err
	}
	if collision != nil {
		outcome := pending.Revert(collision)
		return EditResult{
			Applied:  false,
			Booking:  existing,
			Conflict: conflictFromCollision(outcome.Collision),
		}, nil
	}

	outcome := pending.Accept()
	updated := existing
	updated.ResourceID = outcome.Booking.ResourceID
	updated.Start = outcome.Booking.Start
	updated.End = outcome.Booking.End
	updated.UpdatedAt = s.now()

	if err := s.bookings.UpdateBooking(ctx, updated); err != nil {
		var conflict *ConflictError
		if mapped := mapRepoError(err); errors.As(mapped, &conflict) {
			return EditResult{Applied: false, Booking: existing, Conflict: conflict}, nil
		}
		return EditResult{}, mapRepoError(err)
	}
	return EditResult{Applied: true, Booking: updated}, nil
}

func (s *BookingService) buildPendingEdit(ctx context.Context, existing Booking, params EditBookingParams) (editor.PendingEdit, error) {
	original := toSchedulerBooking(existing)

	switch params.Action {
	case EditActionMove:
		return editor.Move(original, params.Delta, s.grid), nil
	case EditActionResizeStart:
		pending, err := editor.ResizeLeft(original, params.NewTime, s.grid)
		if err != nil {
			return editor.PendingEdit{}, mapEditorError(err)
		}
		return pending, nil
	case EditActionResizeEnd:
		pending, err := editor.ResizeRight(original, params.NewTime, s.grid)
		if err != nil {
			return editor.PendingEdit{}, mapEditorError(err)
		}
		return pending, nil
	case EditActionReassign:
		if err := s.ensureResourceExists(ctx, params.NewResourceID); err != nil {
			return editor.PendingEdit{}, err
		}
		return editor.Reassign(original, params.NewResourceID), nil
	default:
		vErr := &ValidationError{}
		vErr.add("action", "unknown edit action")
		return editor.PendingEdit{}, vErr
	}
}

// gate rejects the candidate when it overlaps any occupancy on its resource.
func (s *BookingService) gate(ctx context.Context, scope Scope, candidate scheduler.Booking) error {
	collision, err := s.findCollision(ctx, scope, candidate)
	if err != nil {
		return err
	}
	if collision != nil {
		return conflictFromCollision(collision)
	}
	return nil
}

func (s *BookingService) findCollision(ctx context.Context, scope Scope, candidate scheduler.Booking) (*scheduler.Collision, error) {
	snapshot, err := loadOccupancy(ctx, s.bookings, s.unavailability, s.expander, scope, candidate.ResourceID, candidate.Start, candidate.End)
	if err != nil {
		return nil, err
	}
	return scheduler.ValidateBooking(candidate, snapshot.bookings, snapshot.unavailability), nil
}

func (s *BookingService) getScoped(ctx context.Context, scope Scope, bookingID string) (Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapRepoError(err)
	}
	if scope.AgencyID != "" && booking.AgencyID != scope.AgencyID {
		return Booking{}, ErrNotFound
	}
	return booking, nil
}

func (s *BookingService) ensureResourceExists(ctx context.Context, resourceID string) error {
	if s.resources == nil {
		return nil
	}
	_, err := s.resources.GetResource(ctx, resourceID)
	if err == nil {
		return nil
	}
	if isNotFoundError(err) {
		vErr := &ValidationError{}
		vErr.add("resource_id", "resource does not exist")
		return vErr
	}
	return err
}

func validateBookingCore(input BookingInput, vErr *ValidationError) {
	if input.ResourceID == "" {
		vErr.add("resource_id", "resource is required")
	}
	if input.ClientID == "" {
		vErr.add("client_id", "client is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("time", "start must be before end")
	}
}

// detectListConflicts runs the pairwise display detector over an ordered
// booking list.
func detectListConflicts(bookings []Booking) []ConflictWarning {
	if len(bookings) <= 1 {
		return nil
	}

	converted := make([]scheduler.Booking, len(bookings))
	for i, booking := range bookings {
		converted[i] = toSchedulerBooking(booking)
	}

	conflicts := scheduler.DetectConflicts(converted)
	if len(conflicts) == 0 {
		return nil
	}

	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{
			BookingID:     conflict.A.ID,
			WithBookingID: conflict.B.ID,
			ResourceID:    conflict.ResourceID,
		})
	}
	return warnings
}

func mapEditorError(err error) error {
	if errors.Is(err, editor.ErrInvertedInterval) {
		vErr := &ValidationError{}
		vErr.add("time", "start must remain before end")
		return vErr
	}
	return err
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	var overlap *persistence.OverlapError
	if errors.As(err, &overlap) {
		return &ConflictError{Kind: overlap.Kind, WithID: overlap.WithID}
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("resource_id", "resource does not exist")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
