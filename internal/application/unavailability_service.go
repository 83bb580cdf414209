package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/recurrence"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/scheduler"
)

// UnavailabilityService orchestrates one-off spans, weekly recurring rules
// and the merged timeline view of both. Spans run the same commit gate as
// bookings; rules are stored as-is and materialise per query window.
type UnavailabilityService struct {
	unavailability UnavailabilityRepository
	bookings       BookingRepository
	resources      ResourceCatalog
	expander       *recurrence.Engine
	windows        *windowCache
	idGenerator    func() string
	now            func() time.Time
}

// NewUnavailabilityService wires dependencies for unavailability operations.
func NewUnavailabilityService(unavailability UnavailabilityRepository, bookings BookingRepository, resources ResourceCatalog, expander *recurrence.Engine, idGenerator func() string, now func() time.Time) *UnavailabilityService {
	if expander == nil {
		expander = recurrence.NewEngine(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UnavailabilityService{
		unavailability: unavailability,
		bookings:       bookings,
		resources:      resources,
		expander:       expander,
		windows:        newWindowCache(0, 0, now),
		idGenerator:    idGenerator,
		now:            now,
	}
}

// CreateSpan validates the request and runs the commit gate before
// delegating to persistence. A span that overlaps a booking, another span or
// a recurring occurrence is rejected with the first collision.
func (s *UnavailabilityService) CreateSpan(ctx context.Context, params CreateSpanParams) (UnavailabilitySpan, error) {
	if s == nil {
		return UnavailabilitySpan{}, fmt.Errorf("UnavailabilityService is nil")
	}
	input := params.Input

	vErr := &ValidationError{}
	if input.ResourceID == "" {
		vErr.add("resource_id", "resource is required")
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
	if vErr.HasErrors() {
		return UnavailabilitySpan{}, vErr
	}

	if err := s.ensureResourceExists(ctx, input.ResourceID); err != nil {
		return UnavailabilitySpan{}, err
	}

	createdAt := s.now()
	span := UnavailabilitySpan{
		ID:         s.idGenerator(),
		AgencyID:   params.Scope.AgencyID,
		ResourceID: input.ResourceID,
		Start:      input.Start,
		End:        input.End,
		Reason:     input.Reason,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	snapshot, err := loadOccupancy(ctx, s.bookings, s.unavailability, s.expander, params.Scope, span.ResourceID, span.Start, span.End)
	if err != nil {
		return UnavailabilitySpan{}, err
	}
	candidate := scheduler.Unavailability{
		ID:         span.ID,
		ResourceID: span.ResourceID,
		Start:      span.Start,
		End:        span.End,
	}
	if collision := scheduler.ValidateUnavailability(candidate, snapshot.bookings, snapshot.unavailability); collision != nil {
		return UnavailabilitySpan{}, conflictFromCollision(collision)
	}

	if err := s.unavailability.CreateSpan(ctx, span); err != nil {
		return UnavailabilitySpan{}, mapRepoError(err)
	}
	return span, nil
}

// DeleteSpan removes a one-off span. A span owned by another agency reads as
// missing.
func (s *UnavailabilityService) DeleteSpan(ctx context.Context, scope Scope, spanID string) error {
	if s == nil {
		return fmt.Errorf("UnavailabilityService is nil")
	}
	if _, err := s.getScopedSpan(ctx, scope, spanID); err != nil {
		return err
	}
	if err := s.unavailability.DeleteSpan(ctx, spanID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// CreateRule validates and stores a weekly recurring rule. Only the stored
// form is validated; occurrences are derived per query window, so no
// occurrence rows are written and nothing needs regeneration when the query
// window changes.
func (s *UnavailabilityService) CreateRule(ctx context.Context, params CreateRuleParams) (RecurringRule, error) {
	if s == nil {
		return RecurringRule{}, fmt.Errorf("UnavailabilityService is nil")
	}
	input := params.Input

	vErr := &ValidationError{}
	if input.ResourceID == "" {
		vErr.add("resource_id", "resource is required")
	}
	probe := recurrence.Rule{
		ID:          "probe",
		ResourceID:  input.ResourceID,
		Weekday:     input.Weekday,
		StartMinute: input.StartMinute,
		EndMinute:   input.EndMinute,
	}
	switch err := probe.Validate(); {
	case errors.Is(err, recurrence.ErrInvalidWeekday):
		vErr.add("weekday", "weekday must be between Sunday and Saturday")
	case errors.Is(err, recurrence.ErrInvalidTimeOfDay):
		vErr.add("time", "minutes must satisfy 0 <= start < end <= 1440")
	}
	if vErr.HasErrors() {
		return RecurringRule{}, vErr
	}

	if err := s.ensureResourceExists(ctx, input.ResourceID); err != nil {
		return RecurringRule{}, err
	}

	createdAt := s.now()
	rule := RecurringRule{
		ID:          s.idGenerator(),
		AgencyID:    params.Scope.AgencyID,
		ResourceID:  input.ResourceID,
		Weekday:     input.Weekday,
		StartMinute: input.StartMinute,
		EndMinute:   input.EndMinute,
		Reason:      input.Reason,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	if err := s.unavailability.CreateRule(ctx, rule); err != nil {
		return RecurringRule{}, mapRepoError(err)
	}
	s.windows.Invalidate()
	return rule, nil
}

// ListRules enumerates recurring rules, optionally narrowed to one resource.
func (s *UnavailabilityService) ListRules(ctx context.Context, scope Scope, resourceID string) ([]RecurringRule, error) {
	if s == nil {
		return nil, fmt.Errorf("UnavailabilityService is nil")
	}
	rules, err := s.unavailability.ListRules(ctx, scope.AgencyID, resourceID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return rules, nil
}

// DeleteRule removes a recurring rule. Future query windows simply no longer
// materialise its occurrences. A rule owned by another agency reads as
// missing.
func (s *UnavailabilityService) DeleteRule(ctx context.Context, scope Scope, ruleID string) error {
	if s == nil {
		return fmt.Errorf("UnavailabilityService is nil")
	}
	if _, err := s.getScopedRule(ctx, scope, ruleID); err != nil {
		return err
	}
	if err := s.unavailability.DeleteRule(ctx, ruleID); err != nil {
		return mapRepoError(err)
	}
	s.windows.Invalidate()
	return nil
}

// ListWindows merges stored one-off spans with recurring occurrences derived
// over [From, To), ordered by start time then id. Derived windows carry
// deterministic ids, so repeated queries over the same window agree.
func (s *UnavailabilityService) ListWindows(ctx context.Context, params ListWindowsParams) ([]UnavailabilityWindow, error) {
	if s == nil {
		return nil, fmt.Errorf("UnavailabilityService is nil")
	}

	vErr := &ValidationError{}
	if params.From.IsZero() {
		vErr.add("from", "from is required")
	}
	if params.To.IsZero() {
		vErr.add("to", "to is required")
	}
	if !params.From.IsZero() && !params.To.IsZero() && !params.From.Before(params.To) {
		vErr.add("window", "from must be before to")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	filter := TimelineFilter{
		AgencyID:   params.Scope.AgencyID,
		ResourceID: params.ResourceID,
		From:       &params.From,
		To:         &params.To,
	}
	spans, err := s.unavailability.ListSpans(ctx, filter)
	if err != nil && !isNotFoundError(err) {
		return nil, err
	}

	windows := make([]UnavailabilityWindow, 0, len(spans))
	for _, span := range spans {
		windows = append(windows, UnavailabilityWindow{
			ID:         span.ID,
			ResourceID: span.ResourceID,
			Start:      span.Start,
			End:        span.End,
			Reason:     span.Reason,
		})
	}

	derived, err := s.derivedWindows(ctx, params.Scope, params.ResourceID, params.From, params.To)
	if err != nil {
		return nil, err
	}
	windows = append(windows, derived...)

	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].Start.Equal(windows[j].Start) {
			return windows[i].ID < windows[j].ID
		}
		return windows[i].Start.Before(windows[j].Start)
	})

	if len(windows) == 0 {
		return nil, nil
	}
	return windows, nil
}

func (s *UnavailabilityService) derivedWindows(ctx context.Context, scope Scope, resourceID string, from, to time.Time) ([]UnavailabilityWindow, error) {
	key := buildWindowCacheKey(scope, resourceID, from, to)
	if cached, ok := s.windows.Get(key); ok {
		return cached, nil
	}

	derived, err := expandRules(ctx, s.unavailability, s.expander, scope, resourceID, from, to)
	if err != nil {
		return nil, err
	}
	s.windows.Store(key, derived)
	return derived, nil
}

func (s *UnavailabilityService) getScopedSpan(ctx context.Context, scope Scope, spanID string) (UnavailabilitySpan, error) {
	span, err := s.unavailability.GetSpan(ctx, spanID)
	if err != nil {
		return UnavailabilitySpan{}, mapRepoError(err)
	}
	if scope.AgencyID != "" && span.AgencyID != scope.AgencyID {
		return UnavailabilitySpan{}, ErrNotFound
	}
	return span, nil
}

func (s *UnavailabilityService) getScopedRule(ctx context.Context, scope Scope, ruleID string) (RecurringRule, error) {
	rule, err := s.unavailability.GetRule(ctx, ruleID)
	if err != nil {
		return RecurringRule{}, mapRepoError(err)
	}
	if scope.AgencyID != "" && rule.AgencyID != scope.AgencyID {
		return RecurringRule{}, ErrNotFound
	}
	return rule, nil
}

func (s *UnavailabilityService) ensureResourceExists(ctx context.Context, resourceID string) error {
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
