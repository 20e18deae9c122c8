package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/HendryAvila/mission-control/internal/notes"
)

// Notes persists memory notes with an FTS5 index over title and content.
type Notes struct {
	s *DB
}

var _ notes.Repository = (*Notes)(nil)

const noteColumns = `n.id, n.title, n.content, n.date, n.created_at`

func (r *Notes) InsertNote(ctx context.Context, n notes.Note) error {
	_, err := r.s.execHook(ctx, r.s.db,
		`INSERT INTO notes (id, title, content, date, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content, n.Date, toMillis(n.CreatedAt),
	)
	return err
}

func (r *Notes) PatchNote(ctx context.Context, id string, p notes.UpdateParams) (bool, error) {
	res, err := r.s.execHook(ctx, r.s.db,
		`UPDATE notes
		 SET title   = COALESCE(?, title),
		     content = COALESCE(?, content),
		     date    = COALESCE(?, date)
		 WHERE id = ?`,
		optional(p.Title), optional(p.Content), optional(p.Date), id,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *Notes) DeleteNote(ctx context.Context, id string) error {
	_, err := r.s.execHook(ctx, r.s.db, `DELETE FROM notes WHERE id = ?`, id)
	return err
}

// ListNotes returns notes newest first; limit 0 returns all of them.
func (r *Notes) ListNotes(ctx context.Context, limit int) ([]notes.Note, error) {
	q := `SELECT ` + noteColumns + ` FROM notes n ORDER BY n.created_at DESC, n.seq DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.s.queryHook(ctx, r.s.db, q, args...)
	if err != nil {
		return nil, err
	}
	return scanNotes(rows)
}

// SearchNotes runs an FTS5 match, best matches first. Every word of query
// is matched as a quoted phrase, so FTS operators in user input are inert.
func (r *Notes) SearchNotes(ctx context.Context, query string, limit int) ([]notes.Note, error) {
	fts := sanitizeFTS(query)
	if fts == "" {
		return r.ListNotes(ctx, limit)
	}
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT `+noteColumns+`
		 FROM notes_fts fts
		 JOIN notes n ON n.seq = fts.rowid
		 WHERE notes_fts MATCH ?
		 ORDER BY fts.rank LIMIT ?`, fts, limit)
	if err != nil {
		return nil, err
	}
	return scanNotes(rows)
}

func (r *Notes) CountNotes(ctx context.Context) (int, error) {
	rows, err := r.s.queryHook(ctx, r.s.db, `SELECT COUNT(*) FROM notes`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func scanNotes(rows *sql.Rows) ([]notes.Note, error) {
	defer func() { _ = rows.Close() }()

	var out []notes.Note
	for rows.Next() {
		var (
			n         notes.Note
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Date, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = fromMillis(createdAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " ")
}
