package main

import (
	"context"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
)

// The application services speak in application models; the repositories in
// persistence models. The adapters below translate between the two so neither
// layer imports the other. Repository errors pass through untranslated, the
// services map them to their own taxonomy.

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) error {
	return a.repo.CreateBooking(ctx, toPersistenceBooking(booking))
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, booking application.Booking) error {
	return a.repo.UpdateBooking(ctx, toPersistenceBooking(booking))
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context, filter application.TimelineFilter) ([]application.Booking, error) {
	models, err := a.repo.ListBookings(ctx, toPersistenceFilter(filter))
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

type unavailabilityRepositoryAdapter struct {
	repo persistence.UnavailabilityRepository
}

func newUnavailabilityRepositoryAdapter(repo persistence.UnavailabilityRepository) *unavailabilityRepositoryAdapter {
	return &unavailabilityRepositoryAdapter{repo: repo}
}

func (a *unavailabilityRepositoryAdapter) CreateSpan(ctx context.Context, span application.UnavailabilitySpan) error {
	return a.repo.CreateSpan(ctx, toPersistenceSpan(span))
}

func (a *unavailabilityRepositoryAdapter) GetSpan(ctx context.Context, id string) (application.UnavailabilitySpan, error) {
	stored, err := a.repo.GetSpan(ctx, id)
	if err != nil {
		return application.UnavailabilitySpan{}, err
	}
	return toApplicationSpan(stored), nil
}

func (a *unavailabilityRepositoryAdapter) ListSpans(ctx context.Context, filter application.TimelineFilter) ([]application.UnavailabilitySpan, error) {
	models, err := a.repo.ListSpans(ctx, toPersistenceFilter(filter))
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	spans := make([]application.UnavailabilitySpan, 0, len(models))
	for _, model := range models {
		spans = append(spans, toApplicationSpan(model))
	}
	return spans, nil
}

func (a *unavailabilityRepositoryAdapter) DeleteSpan(ctx context.Context, id string) error {
	return a.repo.DeleteSpan(ctx, id)
}

func (a *unavailabilityRepositoryAdapter) CreateRule(ctx context.Context, rule application.RecurringRule) error {
	return a.repo.CreateRule(ctx, toPersistenceRule(rule))
}

func (a *unavailabilityRepositoryAdapter) GetRule(ctx context.Context, id string) (application.RecurringRule, error) {
	stored, err := a.repo.GetRule(ctx, id)
	if err != nil {
		return application.RecurringRule{}, err
	}
	return toApplicationRule(stored), nil
}

func (a *unavailabilityRepositoryAdapter) ListRules(ctx context.Context, agencyID, resourceID string) ([]application.RecurringRule, error) {
	models, err := a.repo.ListRules(ctx, agencyID, resourceID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rules := make([]application.RecurringRule, 0, len(models))
	for _, model := range models {
		rules = append(rules, toApplicationRule(model))
	}
	return rules, nil
}

func (a *unavailabilityRepositoryAdapter) DeleteRule(ctx context.Context, id string) error {
	return a.repo.DeleteRule(ctx, id)
}

// resourceRepositoryAdapter satisfies both application.ResourceRepository and
// the read-only application.ResourceCatalog.
type resourceRepositoryAdapter struct {
	repo persistence.ResourceRepository
}

func newResourceRepositoryAdapter(repo persistence.ResourceRepository) *resourceRepositoryAdapter {
	return &resourceRepositoryAdapter{repo: repo}
}

func (a *resourceRepositoryAdapter) CreateResource(ctx context.Context, resource application.Resource) error {
	return a.repo.CreateResource(ctx, toPersistenceResource(resource))
}

func (a *resourceRepositoryAdapter) UpdateResource(ctx context.Context, resource application.Resource) error {
	return a.repo.UpdateResource(ctx, toPersistenceResource(resource))
}

func (a *resourceRepositoryAdapter) GetResource(ctx context.Context, id string) (application.Resource, error) {
	stored, err := a.repo.GetResource(ctx, id)
	if err != nil {
		return application.Resource{}, err
	}
	return toApplicationResource(stored), nil
}

func (a *resourceRepositoryAdapter) DeleteResource(ctx context.Context, id string) error {
	return a.repo.DeleteResource(ctx, id)
}

func (a *resourceRepositoryAdapter) ListResources(ctx context.Context, agencyID string) ([]application.Resource, error) {
	models, err := a.repo.ListResources(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	resources := make([]application.Resource, 0, len(models))
	for _, model := range models {
		resources = append(resources, toApplicationResource(model))
	}
	return resources, nil
}

func toPersistenceFilter(filter application.TimelineFilter) persistence.TimelineFilter {
	return persistence.TimelineFilter{
		AgencyID:   filter.AgencyID,
		ResourceID: filter.ResourceID,
		From:       filter.From,
		To:         filter.To,
	}
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:         booking.ID,
		AgencyID:   booking.AgencyID,
		ResourceID: booking.ResourceID,
		ClientID:   booking.ClientID,
		DriverID:   booking.DriverID,
		Title:      booking.Title,
		Notes:      booking.Notes,
		Start:      booking.Start,
		End:        booking.End,
		CreatedAt:  booking.CreatedAt,
		UpdatedAt:  booking.UpdatedAt,
	}
}

func toApplicationBooking(booking persistence.Booking) application.Booking {
	return application.Booking{
		ID:         booking.ID,
		AgencyID:   booking.AgencyID,
		ResourceID: booking.ResourceID,
		ClientID:   booking.ClientID,
		DriverID:   booking.DriverID,
		Title:      booking.Title,
		Notes:      booking.Notes,
		Start:      booking.Start,
		End:        booking.End,
		CreatedAt:  booking.CreatedAt,
		UpdatedAt:  booking.UpdatedAt,
	}
}

func toPersistenceSpan(span application.UnavailabilitySpan) persistence.UnavailabilitySpan {
	return persistence.UnavailabilitySpan{
		ID:         span.ID,
		AgencyID:   span.AgencyID,
		ResourceID: span.ResourceID,
		Start:      span.Start,
		End:        span.End,
		Reason:     span.Reason,
		CreatedAt:  span.CreatedAt,
		UpdatedAt:  span.UpdatedAt,
	}
}

func toApplicationSpan(span persistence.UnavailabilitySpan) application.UnavailabilitySpan {
	return application.UnavailabilitySpan{
		ID:         span.ID,
		AgencyID:   span.AgencyID,
		ResourceID: span.ResourceID,
		Start:      span.Start,
		End:        span.End,
		Reason:     span.Reason,
		CreatedAt:  span.CreatedAt,
		UpdatedAt:  span.UpdatedAt,
	}
}

func toPersistenceRule(rule application.RecurringRule) persistence.RecurringRule {
	return persistence.RecurringRule{
		ID:          rule.ID,
		AgencyID:    rule.AgencyID,
		ResourceID:  rule.ResourceID,
		Weekday:     rule.Weekday,
		StartMinute: rule.StartMinute,
		EndMinute:   rule.EndMinute,
		Reason:      rule.Reason,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}
}

func toApplicationRule(rule persistence.RecurringRule) application.RecurringRule {
	return application.RecurringRule{
		ID:          rule.ID,
		AgencyID:    rule.AgencyID,
		ResourceID:  rule.ResourceID,
		Weekday:     rule.Weekday,
		StartMinute: rule.StartMinute,
		EndMinute:   rule.EndMinute,
		Reason:      rule.Reason,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}
}

func toPersistenceResource(resource application.Resource) persistence.Resource {
	return persistence.Resource{
		ID:           resource.ID,
		AgencyID:     resource.AgencyID,
		Name:         resource.Name,
		Kind:         resource.Kind,
		Registration: resource.Registration,
		CreatedAt:    resource.CreatedAt,
		UpdatedAt:    resource.UpdatedAt,
	}
}

func toApplicationResource(resource persistence.Resource) application.Resource {
	return application.Resource{
		ID:           resource.ID,
		AgencyID:     resource.AgencyID,
		Name:         resource.Name,
		Kind:         resource.Kind,
		Registration: resource.Registration,
		CreatedAt:    resource.CreatedAt,
		UpdatedAt:    resource.UpdatedAt,
	}
}
