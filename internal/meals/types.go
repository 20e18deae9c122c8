// Package meals implements the family meal ratings: upsert-by-name meal
// resolution, rating events from a fixed panel of raters, cascade delete,
// and the approval ranking.
package meals

import (
	"context"
	"time"
)

// Verdict is one rater's opinion of a meal.
type Verdict string

const (
	Up   Verdict = "up"   // approve
	Down Verdict = "down" // disapprove
)

// Valid reports whether v is a recognized verdict.
func (v Verdict) Valid() bool { return v == Up || v == Down }

// Meal is a rated entity, unique by name.
type Meal struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Chef       string    `json:"chef,omitempty"`
	LastServed time.Time `json:"last_served"`
	CreatedAt  time.Time `json:"created_at"`
}

// Rating is one dated submission of verdicts for a meal. Raters that did
// not vote are simply absent from Verdicts.
type Rating struct {
	ID        string             `json:"id"`
	MealID    string             `json:"meal_id"`
	Date      string             `json:"date"`
	Chef      string             `json:"chef,omitempty"`
	Verdicts  map[string]Verdict `json:"ratings"`
	Comments  string             `json:"comments,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// AddRatingParams holds the input for Service.AddRating.
type AddRatingParams struct {
	MealID   string             `json:"meal_id"`
	Date     string             `json:"date"`
	Chef     string             `json:"chef,omitempty"`
	Verdicts map[string]Verdict `json:"ratings"`
	Comments string             `json:"comments,omitempty"`
}

// RecordParams holds the input for Service.Record: the meal is resolved
// by name and the rating attached to it.
type RecordParams struct {
	Name     string             `json:"name"`
	Chef     string             `json:"chef,omitempty"`
	Date     string             `json:"date"`
	Verdicts map[string]Verdict `json:"ratings"`
	Comments string             `json:"comments,omitempty"`
}

// Ranked is one entry of the top-rated list.
type Ranked struct {
	Meal           Meal    `json:"meal"`
	ApprovalRating float64 `json:"approval_rating"`
	TotalVotes     int     `json:"total_votes"`
	UpVotes        int     `json:"up_votes"`
}

// Repository is the record store as seen by the meals service.
type Repository interface {
	// UpsertMealByName inserts a meal or, when the name exists, refreshes
	// its last_served and chef. It returns the id of the stored meal.
	UpsertMealByName(ctx context.Context, m Meal) (string, error)
	GetMeal(ctx context.Context, id string) (*Meal, error)
	GetMealByName(ctx context.Context, name string) (*Meal, error)
	ListMeals(ctx context.Context) ([]Meal, error)
	// InsertRating stores r and sets the meal's last_served to
	// r.CreatedAt. It returns false when the meal does not exist.
	InsertRating(ctx context.Context, r Rating) (bool, error)
	DeleteRating(ctx context.Context, id string) error
	// DeleteMeal removes the meal and all of its ratings.
	DeleteMeal(ctx context.Context, id string) error
	ListRatings(ctx context.Context, limit int) ([]Rating, error)
	ListRatingsByMeal(ctx context.Context, mealID string) ([]Rating, error)
}
