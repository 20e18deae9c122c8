package team_test

import (
	"context"
	"testing"

	"github.com/HendryAvila/mission-control/internal/apperr"
	"github.com/HendryAvila/mission-control/internal/config"
	"github.com/HendryAvila/mission-control/internal/store"
	"github.com/HendryAvila/mission-control/internal/team"
)

func newService(t *testing.T) *team.Service {
	t.Helper()
	db, err := store.Open(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return team.NewService(db.Agents(), config.DefaultConfig().AgentStatuses)
}

func TestCreate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	id, err := s.Create(ctx, team.CreateParams{
		Name: "Chef Bot", Role: "meal planning",
		Responsibilities: []string{"menus", " ", "shopping list"},
		Status:           "idle",
	})
	if err != nil {
		t.Fatal(err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("list = %+v", list)
	}
	if got := list[0].Responsibilities; len(got) != 2 || got[1] != "shopping list" {
		t.Errorf("responsibilities = %q", got)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    team.CreateParams
	}{
		{"no name", team.CreateParams{Role: "r", Status: "active"}},
		{"no role", team.CreateParams{Name: "n", Status: "active"}},
		{"bad status", team.CreateParams{Name: "n", Role: "r", Status: "asleep"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Create(ctx, tt.p); !apperr.IsValidation(err) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	id, err := s.Create(ctx, team.CreateParams{Name: "Scout", Role: "research", Status: "idle"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(ctx, id, "active"); err != nil {
		t.Fatal(err)
	}
	list, _ := s.List(ctx)
	if list[0].Status != "active" || list[0].UpdatedAt.Before(list[0].CreatedAt) {
		t.Errorf("agent = %+v", list[0])
	}

	if err := s.SetStatus(ctx, id, "busy"); !apperr.IsValidation(err) {
		t.Errorf("bad status: got %v", err)
	}
	if err := s.SetStatus(ctx, "missing", "idle"); !apperr.IsNotFound(err) {
		t.Errorf("missing agent: got %v", err)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	id, err := s.Create(ctx, team.CreateParams{Name: "Scout", Role: "research", Status: "idle"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Remove(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := s.List(ctx)
	if len(list) != 0 {
		t.Fatalf("agent survived: %+v", list)
	}
}
