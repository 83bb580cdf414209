package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// CreateBooking inserts a booking after re-checking the resource timeline
// inside the writing transaction. Validation against a snapshot can race
// with a concurrent commit; this guard makes the store the final authority
// on the per-resource no-overlap invariant.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}

	fillTimestamps(&booking.CreatedAt, &booking.UpdatedAt)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := guardTimeline(tx, booking.ResourceID, booking.Start, booking.End, booking.ID, ""); err != nil {
			return err
		}

		query := `
			INSERT INTO bookings (id, agency_id, resource_id, client_id, driver_id, title, notes, start_time, end_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.Exec(query,
			booking.ID,
			booking.AgencyID,
			booking.ResourceID,
			booking.ClientID,
			nullString(booking.DriverID),
			booking.Title,
			nullString(booking.Notes),
			formatTime(booking.Start),
			formatTime(booking.End),
			formatTime(booking.CreatedAt),
			formatTime(booking.UpdatedAt),
		)
		return mapError(err)
	})
}

// UpdateBooking rewrites a booking, running the same commit-time guard with
// the booking's own id excluded.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrNotFound
	}

	fillTimestamps(nil, &booking.UpdatedAt)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := guardTimeline(tx, booking.ResourceID, booking.Start, booking.End, booking.ID, ""); err != nil {
			return err
		}

		query := `
			UPDATE bookings
			SET resource_id = ?, client_id = ?, driver_id = ?, title = ?, notes = ?, start_time = ?, end_time = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.Exec(query,
			booking.ResourceID,
			booking.ClientID,
			nullString(booking.DriverID),
			booking.Title,
			nullString(booking.Notes),
			formatTime(booking.Start),
			formatTime(booking.End),
			formatTime(booking.UpdatedAt),
			booking.ID,
		)
		if err != nil {
			return mapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// GetBooking retrieves a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, agency_id, resource_id, client_id, driver_id, title, notes, start_time, end_time, created_at, updated_at
		FROM bookings
		WHERE id = ?
	`
	row := r.pool.db.QueryRowContext(ctx, query, id)
	booking, err := scanBooking(row.Scan)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return booking, nil
}

// ListBookings lists bookings overlapping the filter window, ordered by
// start time then id.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.TimelineFilter) ([]persistence.Booking, error) {
	query := `
		SELECT id, agency_id, resource_id, client_id, driver_id, title, notes, start_time, end_time, created_at, updated_at
		FROM bookings
	`
	where, args := timelineConditions(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking by id.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// guardTimeline rejects the write when [start, end) overlaps a booking other
// than excludeBookingID or a span other than excludeSpanID on the resource.
// Must run inside the writing transaction.
func guardTimeline(tx *sql.Tx, resourceID string, start, end time.Time, excludeBookingID, excludeSpanID string) error {
	startStr, endStr := formatTime(start), formatTime(end)

	var withID string
	err := tx.QueryRow(
		"SELECT id FROM bookings WHERE resource_id = ? AND id <> ? AND start_time < ? AND end_time > ? LIMIT 1",
		resourceID, excludeBookingID, endStr, startStr,
	).Scan(&withID)
	switch {
	case err == nil:
		return &persistence.OverlapError{WithID: withID, Kind: "booking"}
	case err != sql.ErrNoRows:
		return mapError(err)
	}

	err = tx.QueryRow(
		"SELECT id FROM unavailability_spans WHERE resource_id = ? AND id <> ? AND start_time < ? AND end_time > ? LIMIT 1",
		resourceID, excludeSpanID, endStr, startStr,
	).Scan(&withID)
	switch {
	case err == nil:
		return &persistence.OverlapError{WithID: withID, Kind: "unavailability"}
	case err != sql.ErrNoRows:
		return mapError(err)
	}
	return nil
}

func scanBooking(scan func(dest ...any) error) (persistence.Booking, error) {
	var booking persistence.Booking
	var driverID, notes sql.NullString
	var startStr, endStr, createdStr, updatedStr string

	err := scan(
		&booking.ID,
		&booking.AgencyID,
		&booking.ResourceID,
		&booking.ClientID,
		&driverID,
		&booking.Title,
		&notes,
		&startStr,
		&endStr,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	if driverID.Valid {
		booking.DriverID = &driverID.String
	}
	if notes.Valid {
		booking.Notes = &notes.String
	}

	for _, field := range []struct {
		dst *time.Time
		src string
	}{
		{&booking.Start, startStr},
		{&booking.End, endStr},
		{&booking.CreatedAt, createdStr},
		{&booking.UpdatedAt, updatedStr},
	} {
		parsed, err := time.Parse(time.RFC3339, field.src)
		if err != nil {
			return persistence.Booking{}, fmt.Errorf("failed to parse time column: %w", err)
		}
		*field.dst = parsed
	}
	return booking, nil
}

func timelineConditions(filter persistence.TimelineFilter) ([]string, []any) {
	var where []string
	var args []any
	if filter.AgencyID != "" {
		where = append(where, "agency_id = ?")
		args = append(args, filter.AgencyID)
	}
	if filter.ResourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	if filter.From != nil {
		where = append(where, "end_time > ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "start_time < ?")
		args = append(args, formatTime(*filter.To))
	}
	return where, args
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// fillTimestamps backfills zero audit timestamps. The services stamp rows
// from their injected clock; those values are persisted untouched so the
// returned entity and the stored row always agree.
func fillTimestamps(created, updated *time.Time) {
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
