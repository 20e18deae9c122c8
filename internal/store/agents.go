package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HendryAvila/mission-control/internal/team"
)

// Agents persists the team roster.
type Agents struct {
	s *DB
}

var _ team.Repository = (*Agents)(nil)

func (r *Agents) InsertAgent(ctx context.Context, a team.Agent) error {
	resp := a.Responsibilities
	if resp == nil {
		resp = []string{}
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode responsibilities: %w", err)
	}
	_, err = r.s.execHook(ctx, r.s.db,
		`INSERT INTO agents (id, name, role, responsibilities, status, avatar, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Role, string(raw), a.Status, nullString(a.Avatar),
		toMillis(a.CreatedAt), toMillis(a.UpdatedAt),
	)
	return err
}

func (r *Agents) SetAgentStatus(ctx context.Context, id, status string, updatedAt time.Time) (bool, error) {
	res, err := r.s.execHook(ctx, r.s.db,
		`UPDATE agents SET status = ?, updated_at = ? WHERE id = ?`, status, toMillis(updatedAt), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *Agents) DeleteAgent(ctx context.Context, id string) error {
	_, err := r.s.execHook(ctx, r.s.db, `DELETE FROM agents WHERE id = ?`, id)
	return err
}

func (r *Agents) ListAgents(ctx context.Context) ([]team.Agent, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT id, name, role, responsibilities, status, ifnull(avatar, ''), created_at, updated_at
		 FROM agents ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	return scanAgents(rows)
}

func scanAgents(rows *sql.Rows) ([]team.Agent, error) {
	defer func() { _ = rows.Close() }()

	var out []team.Agent
	for rows.Next() {
		var (
			a                    team.Agent
			resp                 string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &resp, &a.Status, &a.Avatar, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(resp), &a.Responsibilities); err != nil {
			return nil, fmt.Errorf("decode responsibilities of %s: %w", a.ID, err)
		}
		a.CreatedAt = fromMillis(createdAt)
		a.UpdatedAt = fromMillis(updatedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
