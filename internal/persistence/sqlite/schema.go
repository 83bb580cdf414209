package sqlite

import (
	"context"
	"fmt"
)

// schema is the planner's single schema version. Time columns hold RFC 3339
// UTC strings so lexicographic comparison matches chronological order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		agency_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('vehicle', 'machine')),
		registration TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_resources_agency ON resources (agency_id, name)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		agency_id TEXT NOT NULL,
		resource_id TEXT NOT NULL REFERENCES resources (id),
		client_id TEXT NOT NULL,
		driver_id TEXT,
		title TEXT NOT NULL,
		notes TEXT,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_resource_window ON bookings (resource_id, start_time, end_time)`,
	`CREATE TABLE IF NOT EXISTS unavailability_spans (
		id TEXT PRIMARY KEY,
		agency_id TEXT NOT NULL,
		resource_id TEXT NOT NULL REFERENCES resources (id),
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_spans_resource_window ON unavailability_spans (resource_id, start_time, end_time)`,
	`CREATE TABLE IF NOT EXISTS recurring_rules (
		id TEXT PRIMARY KEY,
		agency_id TEXT NOT NULL,
		resource_id TEXT NOT NULL REFERENCES resources (id),
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (start_minute >= 0 AND end_minute <= 1440 AND start_minute < end_minute)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rules_resource ON recurring_rules (resource_id)`,
}

func (cp *ConnectionPool) applySchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
