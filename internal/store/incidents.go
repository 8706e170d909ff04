package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crisisdesk/internal/core"
	"github.com/edvin/crisisdesk/internal/model"
)

const incidentColumns = `id, title, description, category, priority, status,
	latitude, longitude, address, reporter_id, assigned_team_id, media_id,
	resolution_media_id, created_at, updated_at, resolved_at`

func scanIncident(row pgx.Row, inc *model.Incident) error {
	return row.Scan(&inc.ID, &inc.Title, &inc.Description, &inc.Category, &inc.Priority, &inc.Status,
		&inc.Latitude, &inc.Longitude, &inc.Address, &inc.ReporterID, &inc.AssignedTeamID, &inc.MediaID,
		&inc.ResolutionMediaID, &inc.CreatedAt, &inc.UpdatedAt, &inc.ResolvedAt)
}

func (q *Queries) GetIncident(ctx context.Context, id string) (*model.Incident, error) {
	var inc model.Incident
	err := scanIncident(q.db.QueryRow(ctx,
		`SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id,
	), &inc)
	if err != nil {
		return nil, notFound(err, "incident")
	}
	return &inc, nil
}

func (q *Queries) LockIncident(ctx context.Context, id string) (*model.Incident, error) {
	var inc model.Incident
	err := scanIncident(q.db.QueryRow(ctx,
		`SELECT `+incidentColumns+` FROM incidents WHERE id = $1 FOR UPDATE`, id,
	), &inc)
	if err != nil {
		return nil, notFound(err, "incident")
	}
	return &inc, nil
}

func (q *Queries) ListIncidents(ctx context.Context, filters core.IncidentFilters) ([]model.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents`

	var conditions []string
	var args []any
	argN := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argN))
		args = append(args, filters.Status)
		argN++
	}
	if filters.ReporterID != "" {
		conditions = append(conditions, fmt.Sprintf("reporter_id = $%d", argN))
		args = append(args, filters.ReporterID)
		argN++
	}
	if filters.TeamID != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_team_id = $%d", argN))
		args = append(args, filters.TeamID)
		argN++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argN)
	args = append(args, filters.Limit)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		var inc model.Incident
		if err := scanIncident(rows, &inc); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}

func (q *Queries) InsertIncident(ctx context.Context, inc *model.Incident) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO incidents (id, title, description, category, priority, status,
		                        latitude, longitude, address, reporter_id, assigned_team_id, media_id,
		                        resolution_media_id, created_at, updated_at, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		inc.ID, inc.Title, inc.Description, inc.Category, inc.Priority, inc.Status,
		inc.Latitude, inc.Longitude, inc.Address, inc.ReporterID, inc.AssignedTeamID, inc.MediaID,
		inc.ResolutionMediaID, inc.CreatedAt, inc.UpdatedAt, inc.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

// UpdateIncidentStatus is a compare-and-set on status. resolution_media_id
// keeps its value when the change carries none.
func (q *Queries) UpdateIncidentStatus(ctx context.Context, c core.StatusChange) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE incidents
		 SET status = $1, assigned_team_id = $2,
		     resolution_media_id = COALESCE($3, resolution_media_id),
		     resolved_at = $4, updated_at = $5
		 WHERE id = $6 AND status = $7`,
		c.To, c.AssignedTeamID, c.ResolutionMediaID, c.ResolvedAt, c.UpdatedAt, c.IncidentID, c.From,
	)
	if err != nil {
		return fmt.Errorf("update incident status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: incident %s is no longer %s", core.ErrConflict, c.IncidentID, c.From)
	}
	return nil
}

func (q *Queries) DeleteIncident(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incident %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (q *Queries) CountActiveIncidentsForTeam(ctx context.Context, teamID string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM incidents
		 WHERE assigned_team_id = $1 AND status IN ('pending', 'in_progress')`, teamID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count team incidents: %w", err)
	}
	return n, nil
}

func (q *Queries) CountActiveIncidentsForReporter(ctx context.Context, reporterID string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM incidents
		 WHERE reporter_id = $1 AND status IN ('pending', 'in_progress')`, reporterID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reporter incidents: %w", err)
	}
	return n, nil
}
