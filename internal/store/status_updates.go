package store

import (
	"context"
	"fmt"

	"github.com/edvin/crisisdesk/internal/model"
)

func (q *Queries) AppendStatusUpdate(ctx context.Context, upd *model.StatusUpdate) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO status_updates (id, incident_id, old_status, new_status, notes, actor_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		upd.ID, upd.IncidentID, upd.OldStatus, upd.NewStatus, upd.Notes, upd.ActorID, upd.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status update: %w", err)
	}
	return nil
}

// ListStatusUpdates orders by insertion sequence so entries written in the
// same instant keep their order.
func (q *Queries) ListStatusUpdates(ctx context.Context, incidentID string) ([]model.StatusUpdate, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, incident_id, old_status, new_status, notes, actor_id, created_at
		 FROM status_updates WHERE incident_id = $1 ORDER BY seq DESC`, incidentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list status updates: %w", err)
	}
	defer rows.Close()

	var updates []model.StatusUpdate
	for rows.Next() {
		var u model.StatusUpdate
		if err := rows.Scan(&u.ID, &u.IncidentID, &u.OldStatus, &u.NewStatus, &u.Notes, &u.ActorID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status update: %w", err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status updates: %w", err)
	}
	return updates, nil
}
