package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HendryAvila/mission-control/internal/meals"
)

// Meals persists meals and their rating events.
type Meals struct {
	s *DB
}

var _ meals.Repository = (*Meals)(nil)

const (
	mealColumns   = `id, name, ifnull(chef, ''), last_served, created_at`
	ratingColumns = `id, meal_id, date, ifnull(chef, ''), ratings, ifnull(comments, ''), created_at`
)

// UpsertMealByName resolves the name in one statement: the UNIQUE index on
// meals(name) turns a concurrent second insert into an update of the row
// the first one created.
func (r *Meals) UpsertMealByName(ctx context.Context, m meals.Meal) (string, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`INSERT INTO meals (id, name, chef, last_served, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     last_served = excluded.last_served,
		     chef        = excluded.chef
		 RETURNING id`,
		m.ID, m.Name, nullString(m.Chef), toMillis(m.LastServed), toMillis(m.CreatedAt),
	)
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", err
		}
		return "", errors.New("upsert meal: no id returned")
	}
	var id string
	if err := rows.Scan(&id); err != nil {
		return "", err
	}
	return id, rows.Err()
}

func (r *Meals) GetMeal(ctx context.Context, id string) (*meals.Meal, error) {
	return r.getMeal(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
}

func (r *Meals) GetMealByName(ctx context.Context, name string) (*meals.Meal, error) {
	return r.getMeal(ctx, `SELECT `+mealColumns+` FROM meals WHERE name = ?`, name)
}

func (r *Meals) getMeal(ctx context.Context, query string, arg string) (*meals.Meal, error) {
	rows, err := r.s.queryHook(ctx, r.s.db, query, arg)
	if err != nil {
		return nil, err
	}
	list, err := scanMeals(rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

func (r *Meals) ListMeals(ctx context.Context) ([]meals.Meal, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT `+mealColumns+` FROM meals ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	return scanMeals(rows)
}

// InsertRating stores the rating and refreshes the meal's last_served in
// one transaction. It returns false, and stores nothing, when the meal
// does not exist.
func (r *Meals) InsertRating(ctx context.Context, rt meals.Rating) (bool, error) {
	verdicts, err := json.Marshal(rt.Verdicts)
	if err != nil {
		return false, fmt.Errorf("encode ratings: %w", err)
	}

	tx, err := r.s.beginTxHook(ctx)
	if err != nil {
		return false, err
	}
	defer rollback(tx)

	res, err := r.s.execHook(ctx, tx,
		`UPDATE meals SET last_served = ? WHERE id = ?`, toMillis(rt.CreatedAt), rt.MealID)
	if err != nil {
		return false, err
	}
	if ok, err := affected(res); err != nil || !ok {
		return false, err
	}

	if _, err := r.s.execHook(ctx, tx,
		`INSERT INTO meal_ratings (id, meal_id, date, chef, ratings, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.MealID, rt.Date, nullString(rt.Chef), string(verdicts),
		nullString(rt.Comments), toMillis(rt.CreatedAt),
	); err != nil {
		return false, err
	}

	if err := r.s.commitHook(tx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Meals) DeleteRating(ctx context.Context, id string) error {
	_, err := r.s.execHook(ctx, r.s.db, `DELETE FROM meal_ratings WHERE id = ?`, id)
	return err
}

// DeleteMeal removes the meal and every rating referencing it atomically.
func (r *Meals) DeleteMeal(ctx context.Context, id string) error {
	tx, err := r.s.beginTxHook(ctx)
	if err != nil {
		return err
	}
	defer rollback(tx)

	if _, err := r.s.execHook(ctx, tx, `DELETE FROM meal_ratings WHERE meal_id = ?`, id); err != nil {
		return err
	}
	if _, err := r.s.execHook(ctx, tx, `DELETE FROM meals WHERE id = ?`, id); err != nil {
		return err
	}
	return r.s.commitHook(tx)
}

// ListRatings returns ratings newest first; limit 0 returns all of them.
func (r *Meals) ListRatings(ctx context.Context, limit int) ([]meals.Rating, error) {
	q := `SELECT ` + ratingColumns + ` FROM meal_ratings ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.s.queryHook(ctx, r.s.db, q, args...)
	if err != nil {
		return nil, err
	}
	return scanRatings(rows)
}

func (r *Meals) ListRatingsByMeal(ctx context.Context, mealID string) ([]meals.Rating, error) {
	rows, err := r.s.queryHook(ctx, r.s.db,
		`SELECT `+ratingColumns+` FROM meal_ratings WHERE meal_id = ?
		 ORDER BY created_at DESC, rowid DESC`, mealID)
	if err != nil {
		return nil, err
	}
	return scanRatings(rows)
}

func scanMeals(rows *sql.Rows) ([]meals.Meal, error) {
	defer func() { _ = rows.Close() }()

	var out []meals.Meal
	for rows.Next() {
		var (
			m                     meals.Meal
			lastServed, createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Chef, &lastServed, &createdAt); err != nil {
			return nil, err
		}
		m.LastServed = fromMillis(lastServed)
		m.CreatedAt = fromMillis(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanRatings(rows *sql.Rows) ([]meals.Rating, error) {
	defer func() { _ = rows.Close() }()

	var out []meals.Rating
	for rows.Next() {
		var (
			rt        meals.Rating
			verdicts  string
			createdAt int64
		)
		if err := rows.Scan(&rt.ID, &rt.MealID, &rt.Date, &rt.Chef, &verdicts, &rt.Comments, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(verdicts), &rt.Verdicts); err != nil {
			return nil, fmt.Errorf("decode ratings of %s: %w", rt.ID, err)
		}
		rt.CreatedAt = fromMillis(createdAt)
		out = append(out, rt)
	}
	return out, rows.Err()
}
