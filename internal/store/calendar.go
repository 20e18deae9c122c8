package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/HendryAvila/mission-control/internal/calendar"
)

// ScheduledTasks persists calendar entries.
type ScheduledTasks struct {
	s *DB
}

var _ calendar.Repository = (*ScheduledTasks)(nil)

const scheduledColumns = `id, title, scheduled_at, ifnull(recurrence, ''), completed, created_at`

func (r *ScheduledTasks) InsertScheduled(ctx context.Context, t calendar.ScheduledTask) error {
	_, err := r.s.execHook(ctx, r.s.db,
		`INSERT INTO scheduled_tasks (id, title, scheduled_at, recurrence, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, toMillis(t.ScheduledAt), nullString(t.Recurrence), t.Completed, toMillis(t.CreatedAt),
	)
	return err
}

// PatchScheduled updates the supplied fields. An empty recurrence clears it.
func (r *ScheduledTasks) PatchScheduled(ctx context.Context, id string, p calendar.UpdateParams) (bool, error) {
	var scheduledAt any
	if p.ScheduledAt != nil {
		scheduledAt = toMillis(*p.ScheduledAt)
	}
	recurrence := optional(p.Recurrence)
	res, err := r.s.execHook(ctx, r.s.db,
		`UPDATE scheduled_tasks
		 SET title        = COALESCE(?, title),
		     scheduled_at = COALESCE(?, scheduled_at),
		     recurrence   = CASE WHEN ? IS NULL THEN recurrence ELSE NULLIF(?, '') END,
		     completed    = COALESCE(?, completed)
		 WHERE id = ?`,
		optional(p.Title), scheduledAt, recurrence, recurrence, optional(p.Completed), id,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *ScheduledTasks) DeleteScheduled(ctx context.Context, id string) error {
	_, err := r.s.execHook(ctx, r.s.db, `DELETE FROM scheduled_tasks WHERE id = ?`, id)
	return err
}

func (r *ScheduledTasks) ListScheduled(ctx context.Context) ([]calendar.ScheduledTask, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT `+scheduledColumns+` FROM scheduled_tasks ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	return scanScheduled(rows)
}

// ListUpcoming returns incomplete entries scheduled strictly after the
// given instant, soonest first.
func (r *ScheduledTasks) ListUpcoming(ctx context.Context, after time.Time) ([]calendar.ScheduledTask, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT `+scheduledColumns+` FROM scheduled_tasks
		 WHERE completed = 0 AND scheduled_at > ?
		 ORDER BY scheduled_at ASC, rowid ASC`, toMillis(after))
	if err != nil {
		return nil, err
	}
	return scanScheduled(rows)
}

func scanScheduled(rows *sql.Rows) ([]calendar.ScheduledTask, error) {
	defer func() { _ = rows.Close() }()

	var out []calendar.ScheduledTask
	for rows.Next() {
		var (
			t                      calendar.ScheduledTask
			scheduledAt, createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.Title, &scheduledAt, &t.Recurrence, &t.Completed, &createdAt); err != nil {
			return nil, err
		}
		t.ScheduledAt = fromMillis(scheduledAt)
		t.CreatedAt = fromMillis(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}
