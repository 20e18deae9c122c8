package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/mission-control/internal/stages"
)

// StagedItems persists tasks and content items in one table keyed by kind.
type StagedItems struct {
	s *DB
}

var _ stages.Repository = (*StagedItems)(nil)

const itemColumns = `id, kind, title, stage, attrs, created_at, updated_at`

func (r *StagedItems) InsertItem(ctx context.Context, item stages.Item) error {
	attrs, err := json.Marshal(nonNilAttrs(item.Attrs))
	if err != nil {
		return fmt.Errorf("encode attrs: %w", err)
	}
	_, err = r.s.execHook(ctx, r.s.db,
		`INSERT INTO staged_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Kind, item.Title, item.Stage, string(attrs),
		toMillis(item.CreatedAt), toMillis(item.UpdatedAt),
	)
	return err
}

func (r *StagedItems) GetItem(ctx context.Context, kind, id string) (*stages.Item, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT `+itemColumns+` FROM staged_items WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return nil, err
	}
	items, err := scanItems(rows)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

// PatchItem applies p in a single UPDATE statement, so concurrent patches
// to different fields of the same item never overwrite each other.
func (r *StagedItems) PatchItem(ctx context.Context, kind, id string, p stages.Patch) (bool, error) {
	patch := "{}"
	if len(p.Attrs) > 0 {
		raw, err := json.Marshal(p.Attrs)
		if err != nil {
			return false, fmt.Errorf("encode attrs patch: %w", err)
		}
		patch = string(raw)
	}
	res, err := r.s.execHook(ctx, r.s.db,
		`UPDATE staged_items
		 SET title      = COALESCE(?, title),
		     stage      = COALESCE(?, stage),
		     attrs      = json_patch(attrs, ?),
		     updated_at = ?
		 WHERE kind = ? AND id = ?`,
		optional(p.Title), optional(p.Stage), patch, toMillis(p.UpdatedAt), kind, id,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *StagedItems) DeleteItem(ctx context.Context, kind, id string) error {
	_, err := r.s.execHook(ctx, r.s.db, `DELETE FROM staged_items WHERE kind = ? AND id = ?`, kind, id)
	return err
}

func (r *StagedItems) ListItems(ctx context.Context, kind string, opts stages.ListOptions) ([]stages.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM staged_items WHERE kind = ?`
	args := []any{kind}
	if opts.Stage != "" {
		q += " AND stage = ?"
		args = append(args, opts.Stage)
	}
	q += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	rows, err := r.s.queryHook(ctx, r.s.db, q, args...)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *StagedItems) CountByStage(ctx context.Context, kind string) (map[string]int, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT stage, COUNT(*) FROM staged_items WHERE kind = ? GROUP BY stage`, kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			stage string
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

func scanItems(rows *sql.Rows) ([]stages.Item, error) {
	defer func() { _ = rows.Close() }()

	var items []stages.Item
	for rows.Next() {
		var (
			it                   stages.Item
			attrs                string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&it.ID, &it.Kind, &it.Title, &it.Stage, &attrs, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attrs), &it.Attrs); err != nil {
			return nil, fmt.Errorf("decode attrs of %s: %w", it.ID, err)
		}
		if len(it.Attrs) == 0 {
			it.Attrs = nil
		}
		it.CreatedAt = fromMillis(createdAt)
		it.UpdatedAt = fromMillis(updatedAt)
		items = append(items, it)
	}
	return items, rows.Err()
}

func nonNilAttrs(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
