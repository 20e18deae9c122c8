package meals_test

import (
	"context"
	"testing"

	"github.com/HendryAvila/mission-control/internal/apperr"
	"github.com/HendryAvila/mission-control/internal/config"
	"github.com/HendryAvila/mission-control/internal/meals"
	"github.com/HendryAvila/mission-control/internal/store"
)

func newService(t *testing.T) *meals.Service {
	t.Helper()
	db, err := store.Open(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return meals.NewService(db.Meals(), config.DefaultConfig().Meals)
}

func TestUpsertMeal_Idempotent(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	id1, err := s.UpsertMeal(ctx, "Tacos", "Pam")
	if err != nil {
		t.Fatal(err)
	}
	first, _ := s.Get(ctx, id1)

	id2, err := s.UpsertMeal(ctx, " Tacos ", "Brian")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("upsert created a second meal: %q vs %q", id1, id2)
	}

	list, _ := s.ListMeals(ctx)
	if len(list) != 1 {
		t.Fatalf("got %d meals, want 1", len(list))
	}
	m := list[0]
	if m.Chef != "Brian" {
		t.Errorf("chef = %q, want overwritten to Brian", m.Chef)
	}
	if m.LastServed.Before(first.LastServed) {
		t.Errorf("last_served went backwards: %v < %v", m.LastServed, first.LastServed)
	}

	if _, err := s.UpsertMeal(ctx, "  ", ""); !apperr.IsValidation(err) {
		t.Errorf("empty name: got %v", err)
	}
}

func TestRecord_ValidatesBeforeWriting(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    meals.RecordParams
	}{
		{"bad date", meals.RecordParams{Name: "Chili", Date: "2026-02-30"}},
		{"loose date", meals.RecordParams{Name: "Chili", Date: "2026-3-1"}},
		{"unknown rater", meals.RecordParams{Name: "Chili", Date: "2026-03-01", Verdicts: map[string]meals.Verdict{"Zed": meals.Up}}},
		{"bad verdict", meals.RecordParams{Name: "Chili", Date: "2026-03-01", Verdicts: map[string]meals.Verdict{"Pam": "meh"}}},
		{"empty name", meals.RecordParams{Name: "", Date: "2026-03-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Record(ctx, tt.p); !apperr.IsValidation(err) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}

	list, _ := s.ListMeals(ctx)
	if len(list) != 0 {
		t.Fatalf("rejected submissions created %d meals", len(list))
	}
}

func TestRecord_DropsOmittedVerdicts(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	mealID, ratingID, err := s.Record(ctx, meals.RecordParams{
		Name: "Pancakes", Date: "2026-03-01",
		Verdicts: map[string]meals.Verdict{"Roman": meals.Up, "Pam": ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	ratings, err := s.MealRatings(ctx, mealID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ratings) != 1 || ratings[0].ID != ratingID {
		t.Fatalf("ratings = %+v", ratings)
	}
	if _, ok := ratings[0].Verdicts["Pam"]; ok || len(ratings[0].Verdicts) != 1 {
		t.Errorf("verdicts = %v, want only Roman", ratings[0].Verdicts)
	}
}

func TestAddRating_UnknownMeal(t *testing.T) {
	s := newService(t)
	_, err := s.AddRating(context.Background(), meals.AddRatingParams{MealID: "nope", Date: "2026-03-01"})
	if !apperr.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestRemoveMeal_Cascades(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	keep, _, err := s.Record(ctx, meals.RecordParams{Name: "Soup", Date: "2026-03-01", Verdicts: map[string]meals.Verdict{"Pam": meals.Up}})
	if err != nil {
		t.Fatal(err)
	}
	gone, _, err := s.Record(ctx, meals.RecordParams{Name: "Chili", Date: "2026-03-01", Verdicts: map[string]meals.Verdict{"Pam": meals.Up}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddRating(ctx, meals.AddRatingParams{MealID: gone, Date: "2026-03-02", Verdicts: map[string]meals.Verdict{"Brian": meals.Down}}); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveMeal(ctx, gone); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveMeal(ctx, gone); err != nil {
		t.Fatalf("second RemoveMeal: %v", err)
	}
	if _, err := s.Get(ctx, gone); !apperr.IsNotFound(err) {
		t.Fatalf("Get after remove: %v", err)
	}

	recent, err := s.RecentRatings(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range recent {
		if r.MealID == gone {
			t.Fatalf("orphan rating %s survived", r.ID)
		}
	}
	if len(recent) != 1 || recent[0].MealID != keep {
		t.Errorf("recent = %+v", recent)
	}
}

func TestTopRated_FromStore(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	submit := func(name string, v map[string]meals.Verdict) {
		t.Helper()
		if _, _, err := s.Record(ctx, meals.RecordParams{Name: name, Date: "2026-03-01", Verdicts: v}); err != nil {
			t.Fatal(err)
		}
	}
	submit("Lasagna", map[string]meals.Verdict{"Roman": meals.Up, "Harlan": meals.Up, "Pam": meals.Down})
	submit("Lasagna", map[string]meals.Verdict{"Roman": meals.Up, "Brian": meals.Up, "Pam": meals.Down})
	submit("Liver", map[string]meals.Verdict{"Harlan": meals.Down})
	submit("Toast", nil)

	top, err := s.TopRated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d ranked meals, want 2 (Toast has no votes)", len(top))
	}
	if top[0].Meal.Name != "Lasagna" || top[0].TotalVotes != 6 || top[0].UpVotes != 4 {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].Meal.Name != "Liver" || top[1].ApprovalRating != 0 {
		t.Errorf("top[1] = %+v", top[1])
	}
}

func TestRemoveRating_Idempotent(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, ratingID, err := s.Record(ctx, meals.RecordParams{Name: "Soup", Date: "2026-03-01"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := s.RemoveRating(ctx, ratingID); err != nil {
			t.Fatal(err)
		}
	}
	recent, _ := s.RecentRatings(ctx, 10)
	if len(recent) != 0 {
		t.Fatalf("rating survived removal: %+v", recent)
	}
}
