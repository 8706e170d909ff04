package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crisisdesk/internal/core"
	"github.com/edvin/crisisdesk/internal/model"
)

const resourceColumns = `id, name, category, description, availability, location, created_at, updated_at`

func scanResource(row pgx.Row, r *model.Resource) error {
	return row.Scan(&r.ID, &r.Name, &r.Category, &r.Description, &r.Availability, &r.Location, &r.CreatedAt, &r.UpdatedAt)
}

func (q *Queries) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	var r model.Resource
	if err := scanResource(q.db.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id,
	), &r); err != nil {
		return nil, notFound(err, "resource")
	}
	return &r, nil
}

func (q *Queries) LockResource(ctx context.Context, id string) (*model.Resource, error) {
	var r model.Resource
	if err := scanResource(q.db.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = $1 FOR UPDATE`, id,
	), &r); err != nil {
		return nil, notFound(err, "resource")
	}
	return &r, nil
}

func (q *Queries) ListResources(ctx context.Context, availability model.Availability) ([]model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources`
	var args []any
	if availability != "" {
		query += ` WHERE availability = $1`
		args = append(args, availability)
	}
	query += ` ORDER BY name, id`

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []model.Resource
	for rows.Next() {
		var r model.Resource
		if err := scanResource(rows, &r); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return resources, nil
}

func (q *Queries) InsertResource(ctx context.Context, r *model.Resource) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO resources (id, name, category, description, availability, location, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Name, r.Category, r.Description, r.Availability, r.Location, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// ClaimResource flips available -> in_use. Zero rows means another
// transaction claimed it first.
func (q *Queries) ClaimResource(ctx context.Context, id string, at time.Time) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE resources SET availability = 'in_use', updated_at = $2
		 WHERE id = $1 AND availability = 'available'`, id, at,
	)
	if err != nil {
		return fmt.Errorf("claim resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: resource %s is no longer available", core.ErrConflict, id)
	}
	return nil
}

func (q *Queries) SetResourceAvailability(ctx context.Context, id string, availability model.Availability, at time.Time) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE resources SET availability = $2, updated_at = $3 WHERE id = $1`, id, availability, at,
	)
	if err != nil {
		return fmt.Errorf("update resource availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteResource relies on the incident_resources foreign key cascading to
// the resource's assignment history.
func (q *Queries) DeleteResource(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", id, core.ErrNotFound)
	}
	return nil
}
