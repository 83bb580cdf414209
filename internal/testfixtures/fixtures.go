package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
)

var (
	resourceCounter uint64
	bookingCounter  uint64
	spanCounter     uint64
	ruleCounter     uint64
)

// referenceTime anchors every fixture to the same Monday morning so weekday
// arithmetic in recurrence tests stays predictable.
var referenceTime = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// DefaultAgencyID is the agency every fixture belongs to unless overridden.
const DefaultAgencyID = "agency-001"

// --------------------------- Resource fixtures ---------------------------

// ResourceFixture represents a deterministic catalog entry that can be
// materialised for application or persistence tests.
type ResourceFixture struct {
	ID           string
	AgencyID     string
	Name         string
	Kind         string
	Registration *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*ResourceFixture)

// NewResourceFixture returns a deterministic resource fixture with optional overrides.
func NewResourceFixture(opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	id := fmt.Sprintf("resource-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ResourceFixture{
		ID:        id,
		AgencyID:  DefaultAgencyID,
		Name:      fmt.Sprintf("Resource %03d", idx),
		Kind:      "vehicle",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) {
		f.ID = id
	}
}

// WithResourceAgency overrides the owning agency.
func WithResourceAgency(agencyID string) ResourceOption {
	return func(f *ResourceFixture) {
		f.AgencyID = agencyID
	}
}

// WithResourceName overrides the generated name.
func WithResourceName(name string) ResourceOption {
	return func(f *ResourceFixture) {
		f.Name = name
	}
}

// WithResourceKind overrides the generated kind.
func WithResourceKind(kind string) ResourceOption {
	return func(f *ResourceFixture) {
		f.Kind = kind
	}
}

// WithResourceRegistration sets the registration plate on the fixture.
func WithResourceRegistration(registration string) ResourceOption {
	return func(f *ResourceFixture) {
		value := registration
		f.Registration = &value
	}
}

// WithResourceTimestamps sets both created and updated timestamps.
func WithResourceTimestamps(created, updated time.Time) ResourceOption {
	return func(f *ResourceFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Resource value.
func (f ResourceFixture) Application() application.Resource {
	return application.Resource{
		ID:           f.ID,
		AgencyID:     f.AgencyID,
		Name:         f.Name,
		Kind:         f.Kind,
		Registration: copyStringPtr(f.Registration),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Resource value.
func (f ResourceFixture) Persistence() persistence.Resource {
	return persistence.Resource{
		ID:           f.ID,
		AgencyID:     f.AgencyID,
		Name:         f.Name,
		Kind:         f.Kind,
		Registration: copyStringPtr(f.Registration),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ResourceInput.
func (f ResourceFixture) Input() application.ResourceInput {
	return application.ResourceInput{
		Name:         f.Name,
		Kind:         f.Kind,
		Registration: copyStringPtr(f.Registration),
	}
}

// ---------------------------- Booking fixtures ---------------------------

// BookingFixture represents a deterministic intervention record.
type BookingFixture struct {
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

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional overrides.
// Consecutive fixtures occupy consecutive hour slots so they never overlap by
// default.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	id := fmt.Sprintf("booking-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := BookingFixture{
		ID:         id,
		AgencyID:   DefaultAgencyID,
		ResourceID: fmt.Sprintf("resource-%03d", idx),
		ClientID:   fmt.Sprintf("client-%03d", idx),
		Title:      fmt.Sprintf("Intervention %03d", idx),
		Start:      start,
		End:        start.Add(time.Hour),
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingAgency overrides the owning agency.
func WithBookingAgency(agencyID string) BookingOption {
	return func(f *BookingFixture) {
		f.AgencyID = agencyID
	}
}

// WithBookingResource sets the booked resource ID.
func WithBookingResource(resourceID string) BookingOption {
	return func(f *BookingFixture) {
		f.ResourceID = resourceID
	}
}

// WithBookingClient sets the client ID.
func WithBookingClient(clientID string) BookingOption {
	return func(f *BookingFixture) {
		f.ClientID = clientID
	}
}

// WithBookingDriver sets the optional driver ID.
func WithBookingDriver(driverID string) BookingOption {
	return func(f *BookingFixture) {
		value := driverID
		f.DriverID = &value
	}
}

// WithBookingTitle overrides the title.
func WithBookingTitle(title string) BookingOption {
	return func(f *BookingFixture) {
		f.Title = title
	}
}

// WithBookingNotes sets the free-form notes field.
func WithBookingNotes(notes string) BookingOption {
	return func(f *BookingFixture) {
		value := notes
		f.Notes = &value
	}
}

// WithBookingStartEnd sets the occupied interval.
func WithBookingStartEnd(start, end time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithBookingTimestamps sets both created and updated timestamps.
func WithBookingTimestamps(created, updated time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:         f.ID,
		AgencyID:   f.AgencyID,
		ResourceID: f.ResourceID,
		ClientID:   f.ClientID,
		DriverID:   copyStringPtr(f.DriverID),
		Title:      f.Title,
		Notes:      copyStringPtr(f.Notes),
		Start:      f.Start,
		End:        f.End,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:         f.ID,
		AgencyID:   f.AgencyID,
		ResourceID: f.ResourceID,
		ClientID:   f.ClientID,
		DriverID:   copyStringPtr(f.DriverID),
		Title:      f.Title,
		Notes:      copyStringPtr(f.Notes),
		Start:      f.Start,
		End:        f.End,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Input returns the fixture as an application.BookingInput.
func (f BookingFixture) Input() application.BookingInput {
	return application.BookingInput{
		ResourceID: f.ResourceID,
		ClientID:   f.ClientID,
		DriverID:   copyStringPtr(f.DriverID),
		Title:      f.Title,
		Notes:      copyStringPtr(f.Notes),
		Start:      f.Start,
		End:        f.End,
	}
}

// ------------------------ Unavailability fixtures ------------------------

// SpanFixture represents a deterministic one-off blocked window.
type SpanFixture struct {
	ID         string
	AgencyID   string
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SpanOption configures the generated span fixture.
type SpanOption func(*SpanFixture)

// NewSpanFixture returns a deterministic unavailability span fixture with
// optional overrides.
func NewSpanFixture(opts ...SpanOption) SpanFixture {
	idx := atomic.AddUint64(&spanCounter, 1)
	id := fmt.Sprintf("span-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	fixture := SpanFixture{
		ID:         id,
		AgencyID:   DefaultAgencyID,
		ResourceID: fmt.Sprintf("resource-%03d", idx),
		Start:      start,
		End:        start.Add(4 * time.Hour),
		Reason:     "maintenance",
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSpanID overrides the generated span ID.
func WithSpanID(id string) SpanOption {
	return func(f *SpanFixture) {
		f.ID = id
	}
}

// WithSpanAgency overrides the owning agency.
func WithSpanAgency(agencyID string) SpanOption {
	return func(f *SpanFixture) {
		f.AgencyID = agencyID
	}
}

// WithSpanResource sets the blocked resource ID.
func WithSpanResource(resourceID string) SpanOption {
	return func(f *SpanFixture) {
		f.ResourceID = resourceID
	}
}

// WithSpanStartEnd sets the blocked interval.
func WithSpanStartEnd(start, end time.Time) SpanOption {
	return func(f *SpanFixture) {
		f.Start = start
		f.End = end
	}
}

// WithSpanReason overrides the reason.
func WithSpanReason(reason string) SpanOption {
	return func(f *SpanFixture) {
		f.Reason = reason
	}
}

// Application returns the fixture as an application.UnavailabilitySpan value.
func (f SpanFixture) Application() application.UnavailabilitySpan {
	return application.UnavailabilitySpan{
		ID:         f.ID,
		AgencyID:   f.AgencyID,
		ResourceID: f.ResourceID,
		Start:      f.Start,
		End:        f.End,
		Reason:     f.Reason,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.UnavailabilitySpan value.
func (f SpanFixture) Persistence() persistence.UnavailabilitySpan {
	return persistence.UnavailabilitySpan{
		ID:         f.ID,
		AgencyID:   f.AgencyID,
		ResourceID: f.ResourceID,
		Start:      f.Start,
		End:        f.End,
		Reason:     f.Reason,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Input returns the fixture as an application.UnavailabilityInput.
func (f SpanFixture) Input() application.UnavailabilityInput {
	return application.UnavailabilityInput{
		ResourceID: f.ResourceID,
		Start:      f.Start,
		End:        f.End,
		Reason:     f.Reason,
	}
}

// ----------------------------- Rule fixtures -----------------------------

// RuleFixture represents a deterministic weekly recurring rule.
type RuleFixture struct {
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

// RuleOption configures the generated rule fixture.
type RuleOption func(*RuleFixture)

// NewRuleFixture returns a deterministic recurring rule fixture with optional
// overrides. The default blocks Monday 08:00 to 10:00.
func NewRuleFixture(opts ...RuleOption) RuleFixture {
	idx := atomic.AddUint64(&ruleCounter, 1)
	id := fmt.Sprintf("rule-%03d", idx)
	fixture := RuleFixture{
		ID:          id,
		AgencyID:    DefaultAgencyID,
		ResourceID:  fmt.Sprintf("resource-%03d", idx),
		Weekday:     time.Monday,
		StartMinute: 480,
		EndMinute:   600,
		Reason:      "weekly inspection",
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRuleID overrides the generated rule ID.
func WithRuleID(id string) RuleOption {
	return func(f *RuleFixture) {
		f.ID = id
	}
}

// WithRuleAgency overrides the owning agency.
func WithRuleAgency(agencyID string) RuleOption {
	return func(f *RuleFixture) {
		f.AgencyID = agencyID
	}
}

// WithRuleResource sets the blocked resource ID.
func WithRuleResource(resourceID string) RuleOption {
	return func(f *RuleFixture) {
		f.ResourceID = resourceID
	}
}

// WithRuleWeekday sets the recurrence weekday.
func WithRuleWeekday(weekday time.Weekday) RuleOption {
	return func(f *RuleFixture) {
		f.Weekday = weekday
	}
}

// WithRuleMinutes sets the blocked minute-of-day window.
func WithRuleMinutes(startMinute, endMinute int) RuleOption {
	return func(f *RuleFixture) {
		f.StartMinute = startMinute
		f.EndMinute = endMinute
	}
}

// WithRuleReason overrides the reason.
func WithRuleReason(reason string) RuleOption {
	return func(f *RuleFixture) {
		f.Reason = reason
	}
}

// Application returns the fixture as an application.RecurringRule value.
func (f RuleFixture) Application() application.RecurringRule {
	return application.RecurringRule{
		ID:          f.ID,
		AgencyID:    f.AgencyID,
		ResourceID:  f.ResourceID,
		Weekday:     f.Weekday,
		StartMinute: f.StartMinute,
		EndMinute:   f.EndMinute,
		Reason:      f.Reason,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.RecurringRule value.
func (f RuleFixture) Persistence() persistence.RecurringRule {
	return persistence.RecurringRule{
		ID:          f.ID,
		AgencyID:    f.AgencyID,
		ResourceID:  f.ResourceID,
		Weekday:     f.Weekday,
		StartMinute: f.StartMinute,
		EndMinute:   f.EndMinute,
		Reason:      f.Reason,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RecurringRuleInput.
func (f RuleFixture) Input() application.RecurringRuleInput {
	return application.RecurringRuleInput{
		ResourceID:  f.ResourceID,
		Weekday:     f.Weekday,
		StartMinute: f.StartMinute,
		EndMinute:   f.EndMinute,
		Reason:      f.Reason,
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
