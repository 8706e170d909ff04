package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crisisdesk/internal/core"
	"github.com/edvin/crisisdesk/internal/model"
)

const assignmentColumns = `id, incident_id, resource_id, notes, assigned_at, released_at`

func scanAssignment(row pgx.Row, a *model.Assignment) error {
	return row.Scan(&a.ID, &a.IncidentID, &a.ResourceID, &a.Notes, &a.AssignedAt, &a.ReleasedAt)
}

func (q *Queries) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	if err := scanAssignment(q.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM incident_resources WHERE id = $1 FOR UPDATE`, id,
	), &a); err != nil {
		return nil, notFound(err, "assignment")
	}
	return &a, nil
}

func (q *Queries) FindActiveAssignment(ctx context.Context, incidentID, resourceID string) (*model.Assignment, error) {
	var a model.Assignment
	if err := scanAssignment(q.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM incident_resources
		 WHERE incident_id = $1 AND resource_id = $2 AND released_at IS NULL`, incidentID, resourceID,
	), &a); err != nil {
		return nil, notFound(err, "assignment")
	}
	return &a, nil
}

func (q *Queries) ListAssignments(ctx context.Context, incidentID string, activeOnly bool) ([]model.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM incident_resources WHERE incident_id = $1`
	if activeOnly {
		query += ` AND released_at IS NULL`
	}
	query += ` ORDER BY assigned_at, id`

	rows, err := q.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := scanAssignment(rows, &a); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}

func (q *Queries) CountActiveAssignmentsForResource(ctx context.Context, resourceID string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM incident_resources WHERE resource_id = $1 AND released_at IS NULL`, resourceID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count resource assignments: %w", err)
	}
	return n, nil
}

// InsertAssignment relies on the partial unique index over active
// (incident_id, resource_id) pairs.
func (q *Queries) InsertAssignment(ctx context.Context, a *model.Assignment) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO incident_resources (id, incident_id, resource_id, notes, assigned_at, released_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.IncidentID, a.ResourceID, a.Notes, a.AssignedAt, a.ReleasedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: resource %s on incident %s", core.ErrAlreadyAssigned, a.ResourceID, a.IncidentID)
	}
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (q *Queries) ReleaseAssignment(ctx context.Context, id string, at time.Time) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE incident_resources SET released_at = $2 WHERE id = $1 AND released_at IS NULL`, id, at,
	)
	if err != nil {
		return fmt.Errorf("release assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", core.ErrAlreadyReleased, id)
	}
	return nil
}
