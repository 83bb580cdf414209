package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository using SQLite.
type ResourceRepository struct {
	pool *ConnectionPool
}

// NewResourceRepository creates a new SQLite resource repository.
func NewResourceRepository(pool *ConnectionPool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

// CreateResource inserts a catalog entry.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrConstraintViolation
	}

	fillTimestamps(&resource.CreatedAt, &resource.UpdatedAt)

	query := `
		INSERT INTO resources (id, agency_id, name, kind, registration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		resource.ID,
		resource.AgencyID,
		resource.Name,
		resource.Kind,
		nullString(resource.Registration),
		formatTime(resource.CreatedAt),
		formatTime(resource.UpdatedAt),
	)
	return mapError(err)
}

// UpdateResource rewrites a catalog entry.
func (r *ResourceRepository) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrNotFound
	}

	fillTimestamps(nil, &resource.UpdatedAt)

	query := `
		UPDATE resources
		SET name = ?, kind = ?, registration = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		resource.Name,
		resource.Kind,
		nullString(resource.Registration),
		formatTime(resource.UpdatedAt),
		resource.ID,
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
}

// GetResource retrieves a catalog entry by id.
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	if id == "" {
		return persistence.Resource{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, agency_id, name, kind, registration, created_at, updated_at
		FROM resources
		WHERE id = ?
	`
	resource, err := scanResource(r.pool.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		return persistence.Resource{}, mapError(err)
	}
	return resource, nil
}

// ListResources lists the catalog of one agency ordered by name then id.
// The stable ordering doubles as the suggestion pool order.
func (r *ResourceRepository) ListResources(ctx context.Context, agencyID string) ([]persistence.Resource, error) {
	query := `
		SELECT id, agency_id, name, kind, registration, created_at, updated_at
		FROM resources
	`
	var args []any
	if agencyID != "" {
		query += " WHERE agency_id = ?"
		args = append(args, agencyID)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var resources []persistence.Resource
	for rows.Next() {
		resource, err := scanResource(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return resources, nil
}

// DeleteResource removes a catalog entry by id.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
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

func scanResource(scan func(dest ...any) error) (persistence.Resource, error) {
	var resource persistence.Resource
	var registration sql.NullString
	var createdStr, updatedStr string

	err := scan(
		&resource.ID,
		&resource.AgencyID,
		&resource.Name,
		&resource.Kind,
		&registration,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return persistence.Resource{}, err
	}
	if registration.Valid {
		resource.Registration = &registration.String
	}
	if err := parseTimes(map[*time.Time]string{
		&resource.CreatedAt: createdStr,
		&resource.UpdatedAt: updatedStr,
	}); err != nil {
		return persistence.Resource{}, err
	}
	return resource, nil
}
