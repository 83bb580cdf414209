package persistence

import "time"

// Resource represents a bookable asset (vehicle or machine) in the catalog.
type Resource struct {
	ID           string
	AgencyID     string
	Name         string
	Kind         string
	Registration *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Booking represents a committed intervention stored for a resource.
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

// UnavailabilitySpan represents a one-off blocked window on a resource.
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

// RecurringRule represents a weekly recurring unavailability pattern.
// Occurrences are always derived at query time, never stored.
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
