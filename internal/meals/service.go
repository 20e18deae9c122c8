package meals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/mission-control/internal/apperr"
	"github.com/HendryAvila/mission-control/internal/config"
)

// dateLayout is the calendar date format of ratings (sortable as text).
const dateLayout = "2006-01-02"

var (
	timeNow = time.Now
	newID   = func() string { return uuid.NewString() }
)

func now() time.Time {
	return timeNow().UTC().Truncate(time.Millisecond)
}

// Service implements the meal operations on top of a Repository.
type Service struct {
	repo   Repository
	cfg    config.Meals
	raters map[string]bool
}

// NewService creates a Service for the rater panel in cfg.
func NewService(repo Repository, cfg config.Meals) *Service {
	raters := make(map[string]bool, len(cfg.Raters))
	for _, r := range cfg.Raters {
		raters[r] = true
	}
	return &Service{repo: repo, cfg: cfg, raters: raters}
}

// Raters returns the configured panel in display order.
func (s *Service) Raters() []string {
	out := make([]string, len(s.cfg.Raters))
	copy(out, s.cfg.Raters)
	return out
}

// UpsertMeal resolves name to a meal, creating it when no meal has that
// exact (case-sensitive) name. An existing meal gets last_served = now
// and its chef overwritten.
func (s *Service) UpsertMeal(ctx context.Context, name, chef string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("meal name is required")
	}
	return s.upsert(ctx, name, strings.TrimSpace(chef))
}

func (s *Service) upsert(ctx context.Context, name, chef string) (string, error) {
	ts := now()
	id, err := s.repo.UpsertMealByName(ctx, Meal{
		ID:         newID(),
		Name:       name,
		Chef:       chef,
		LastServed: ts,
		CreatedAt:  ts,
	})
	if err != nil {
		return "", apperr.Store("upsert meal", err)
	}
	return id, nil
}

// AddRating records a rating event for an existing meal and refreshes the
// meal's last_served.
func (s *Service) AddRating(ctx context.Context, p AddRatingParams) (string, error) {
	verdicts, err := s.validateRating(p.Date, p.Verdicts)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(p.MealID) == "" {
		return "", apperr.Validation("meal_id is required")
	}
	return s.insertRating(ctx, p.MealID, p.Date, strings.TrimSpace(p.Chef), verdicts, strings.TrimSpace(p.Comments))
}

// Record validates a full submission, resolves the meal by name and
// attaches the rating. It returns the meal and rating ids.
func (s *Service) Record(ctx context.Context, p RecordParams) (string, string, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "", "", apperr.Validation("meal name is required")
	}
	verdicts, err := s.validateRating(p.Date, p.Verdicts)
	if err != nil {
		return "", "", err
	}

	chef := strings.TrimSpace(p.Chef)
	mealID, err := s.upsert(ctx, name, chef)
	if err != nil {
		return "", "", err
	}
	ratingID, err := s.insertRating(ctx, mealID, p.Date, chef, verdicts, strings.TrimSpace(p.Comments))
	if err != nil {
		return mealID, "", err
	}
	return mealID, ratingID, nil
}

func (s *Service) insertRating(ctx context.Context, mealID, date, chef string, verdicts map[string]Verdict, comments string) (string, error) {
	r := Rating{
		ID:        newID(),
		MealID:    mealID,
		Date:      date,
		Chef:      chef,
		Verdicts:  verdicts,
		Comments:  comments,
		CreatedAt: now(),
	}
	found, err := s.repo.InsertRating(ctx, r)
	if err != nil {
		return "", apperr.Store("insert rating", err)
	}
	if !found {
		return "", apperr.NotFound("meal", mealID)
	}
	return r.ID, nil
}

// validateRating checks the date and verdicts and returns the verdicts
// with omitted ("") entries dropped.
func (s *Service) validateRating(date string, verdicts map[string]Verdict) (map[string]Verdict, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	out := make(map[string]Verdict, len(verdicts))
	for rater, v := range verdicts {
		if !s.raters[rater] {
			return nil, apperr.Validation("unknown rater %q: must be one of: %s", rater, strings.Join(s.cfg.Raters, ", "))
		}
		if v == "" {
			continue
		}
		if !v.Valid() {
			return nil, apperr.Validation("invalid verdict %q for %s: must be up or down", v, rater)
		}
		out[rater] = v
	}
	return out, nil
}

// ValidateDate rejects anything that is not a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	t, err := time.Parse(dateLayout, date)
	if err != nil || t.Format(dateLayout) != date {
		return apperr.Validation("invalid date %q: expected YYYY-MM-DD", date)
	}
	return nil
}

// RemoveRating deletes one rating. Unknown ids are not an error.
func (s *Service) RemoveRating(ctx context.Context, id string) error {
	return apperr.Store("delete rating", s.repo.DeleteRating(ctx, id))
}

// RemoveMeal deletes a meal together with all of its ratings. Unknown ids
// are not an error.
func (s *Service) RemoveMeal(ctx context.Context, id string) error {
	return apperr.Store("delete meal", s.repo.DeleteMeal(ctx, id))
}

// Get returns one meal or a not-found error.
func (s *Service) Get(ctx context.Context, id string) (*Meal, error) {
	m, err := s.repo.GetMeal(ctx, id)
	if err != nil {
		return nil, apperr.Store("get meal", err)
	}
	if m == nil {
		return nil, apperr.NotFound("meal", id)
	}
	return m, nil
}

// ListMeals returns all meals, most recently created first.
func (s *Service) ListMeals(ctx context.Context) ([]Meal, error) {
	meals, err := s.repo.ListMeals(ctx)
	if err != nil {
		return nil, apperr.Store("list meals", err)
	}
	return meals, nil
}

// RecentRatings returns the latest ratings, newest first. A non-positive
// limit falls back to the configured default.
func (s *Service) RecentRatings(ctx context.Context, limit int) ([]Rating, error) {
	if limit <= 0 {
		limit = s.cfg.RecentRatingsLimit
	}
	ratings, err := s.repo.ListRatings(ctx, limit)
	if err != nil {
		return nil, apperr.Store("list ratings", err)
	}
	return ratings, nil
}

// MealRatings returns every rating of one meal, newest first.
func (s *Service) MealRatings(ctx context.Context, mealID string) ([]Rating, error) {
	ratings, err := s.repo.ListRatingsByMeal(ctx, mealID)
	if err != nil {
		return nil, apperr.Store("list ratings", err)
	}
	return ratings, nil
}

// TopRated ranks every meal against all recorded ratings.
func (s *Service) TopRated(ctx context.Context) ([]Ranked, error) {
	meals, err := s.ListMeals(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.repo.ListRatings(ctx, 0)
	if err != nil {
		return nil, apperr.Store("list ratings", err)
	}
	return TopRated(meals, ratings, s.cfg.TopRatedLimit), nil
}
