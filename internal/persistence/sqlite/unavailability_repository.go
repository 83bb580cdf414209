package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
)

// UnavailabilityRepository implements persistence.UnavailabilityRepository
// using SQLite. One-off spans share the commit-time timeline guard with
// bookings; rules are plain rows since their occurrences are never stored.
type UnavailabilityRepository struct {
	pool *ConnectionPool
}

// NewUnavailabilityRepository creates a new SQLite unavailability repository.
func NewUnavailabilityRepository(pool *ConnectionPool) *UnavailabilityRepository {
	return &UnavailabilityRepository{pool: pool}
}

// CreateSpan inserts a one-off span after re-checking the resource timeline
// inside the writing transaction.
func (r *UnavailabilityRepository) CreateSpan(ctx context.Context, span persistence.UnavailabilitySpan) error {
	if span.ID == "" {
		return persistence.ErrConstraintViolation
	}

	fillTimestamps(&span.CreatedAt, &span.UpdatedAt)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := guardTimeline(tx, span.ResourceID, span.Start, span.End, "", span.ID); err != nil {
			return err
		}

		query := `
			INSERT INTO unavailability_spans (id, agency_id, resource_id, start_time, end_time, reason, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.Exec(query,
			span.ID,
			span.AgencyID,
			span.ResourceID,
			formatTime(span.Start),
			formatTime(span.End),
			span.Reason,
			formatTime(span.CreatedAt),
			formatTime(span.UpdatedAt),
		)
		return mapError(err)
	})
}

// GetSpan retrieves a one-off span by id.
func (r *UnavailabilityRepository) GetSpan(ctx context.Context, id string) (persistence.UnavailabilitySpan, error) {
	if id == "" {
		return persistence.UnavailabilitySpan{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, agency_id, resource_id, start_time, end_time, reason, created_at, updated_at
		FROM unavailability_spans
		WHERE id = ?
	`
	row := r.pool.db.QueryRowContext(ctx, query, id)

	var span persistence.UnavailabilitySpan
	var startStr, endStr, createdStr, updatedStr string
	if err := row.Scan(
		&span.ID,
		&span.AgencyID,
		&span.ResourceID,
		&startStr,
		&endStr,
		&span.Reason,
		&createdStr,
		&updatedStr,
	); err != nil {
		return persistence.UnavailabilitySpan{}, mapError(err)
	}
	if err := parseTimes(map[*time.Time]string{
		&span.Start:     startStr,
		&span.End:       endStr,
		&span.CreatedAt: createdStr,
		&span.UpdatedAt: updatedStr,
	}); err != nil {
		return persistence.UnavailabilitySpan{}, err
	}
	return span, nil
}

// ListSpans lists one-off spans overlapping the filter window, ordered by
// start time then id.
func (r *UnavailabilityRepository) ListSpans(ctx context.Context, filter persistence.TimelineFilter) ([]persistence.UnavailabilitySpan, error) {
	query := `
		SELECT id, agency_id, resource_id, start_time, end_time, reason, created_at, updated_at
		FROM unavailability_spans
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

	var spans []persistence.UnavailabilitySpan
	for rows.Next() {
		var span persistence.UnavailabilitySpan
		var startStr, endStr, createdStr, updatedStr string
		if err := rows.Scan(
			&span.ID,
			&span.AgencyID,
			&span.ResourceID,
			&startStr,
			&endStr,
			&span.Reason,
			&createdStr,
			&updatedStr,
		); err != nil {
			return nil, mapError(err)
		}
		if err := parseTimes(map[*time.Time]string{
			&span.Start:     startStr,
			&span.End:       endStr,
			&span.CreatedAt: createdStr,
			&span.UpdatedAt: updatedStr,
		}); err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return spans, nil
}

// DeleteSpan removes a one-off span by id.
func (r *UnavailabilityRepository) DeleteSpan(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "unavailability_spans", id)
}

// CreateRule inserts a weekly recurring rule. Rules do not run the timeline
// guard: their occurrences are derived per query window and checked by the
// validator wherever they materialise.
func (r *UnavailabilityRepository) CreateRule(ctx context.Context, rule persistence.RecurringRule) error {
	if rule.ID == "" {
		return persistence.ErrConstraintViolation
	}

	fillTimestamps(&rule.CreatedAt, &rule.UpdatedAt)

	query := `
		INSERT INTO recurring_rules (id, agency_id, resource_id, weekday, start_minute, end_minute, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		rule.ID,
		rule.AgencyID,
		rule.ResourceID,
		int(rule.Weekday),
		rule.StartMinute,
		rule.EndMinute,
		rule.Reason,
		formatTime(rule.CreatedAt),
		formatTime(rule.UpdatedAt),
	)
	return mapError(err)
}

// GetRule retrieves a recurring rule by id.
func (r *UnavailabilityRepository) GetRule(ctx context.Context, id string) (persistence.RecurringRule, error) {
	if id == "" {
		return persistence.RecurringRule{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, agency_id, resource_id, weekday, start_minute, end_minute, reason, created_at, updated_at
		FROM recurring_rules
		WHERE id = ?
	`
	row := r.pool.db.QueryRowContext(ctx, query, id)

	var rule persistence.RecurringRule
	var weekday int
	var createdStr, updatedStr string
	if err := row.Scan(
		&rule.ID,
		&rule.AgencyID,
		&rule.ResourceID,
		&weekday,
		&rule.StartMinute,
		&rule.EndMinute,
		&rule.Reason,
		&createdStr,
		&updatedStr,
	); err != nil {
		return persistence.RecurringRule{}, mapError(err)
	}
	rule.Weekday = time.Weekday(weekday)
	if err := parseTimes(map[*time.Time]string{
		&rule.CreatedAt: createdStr,
		&rule.UpdatedAt: updatedStr,
	}); err != nil {
		return persistence.RecurringRule{}, err
	}
	return rule, nil
}

// ListRules lists recurring rules, optionally narrowed to one resource,
// ordered by weekday then start minute then id.
func (r *UnavailabilityRepository) ListRules(ctx context.Context, agencyID, resourceID string) ([]persistence.RecurringRule, error) {
	query := `
		SELECT id, agency_id, resource_id, weekday, start_minute, end_minute, reason, created_at, updated_at
		FROM recurring_rules
	`
	var where []string
	var args []any
	if agencyID != "" {
		where = append(where, "agency_id = ?")
		args = append(args, agencyID)
	}
	if resourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, resourceID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY weekday ASC, start_minute ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rules []persistence.RecurringRule
	for rows.Next() {
		var rule persistence.RecurringRule
		var weekday int
		var createdStr, updatedStr string
		if err := rows.Scan(
			&rule.ID,
			&rule.AgencyID,
			&rule.ResourceID,
			&weekday,
			&rule.StartMinute,
			&rule.EndMinute,
			&rule.Reason,
			&createdStr,
			&updatedStr,
		); err != nil {
			return nil, mapError(err)
		}
		rule.Weekday = time.Weekday(weekday)
		if err := parseTimes(map[*time.Time]string{
			&rule.CreatedAt: createdStr,
			&rule.UpdatedAt: updatedStr,
		}); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rules, nil
}

// DeleteRule removes a recurring rule by id.
func (r *UnavailabilityRepository) DeleteRule(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "recurring_rules", id)
}

func (r *UnavailabilityRepository) deleteByID(ctx context.Context, table, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
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

func parseTimes(fields map[*time.Time]string) error {
	for dst, src := range fields {
		parsed, err := time.Parse(time.RFC3339, src)
		if err != nil {
			return fmt.Errorf("failed to parse time column: %w", err)
		}
		*dst = parsed
	}
	return nil
}
