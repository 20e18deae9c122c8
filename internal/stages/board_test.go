package stages_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/HendryAvila/mission-control/internal/apperr"
	"github.com/HendryAvila/mission-control/internal/config"
	"github.com/HendryAvila/mission-control/internal/stages"
	"github.com/HendryAvila/mission-control/internal/store"
)

func newBoards(t *testing.T) (tasks, content *stages.Board) {
	t.Helper()
	db, err := store.Open(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.DefaultConfig()
	return stages.NewBoard("task", cfg.Tasks, db.StagedItems()),
		stages.NewBoard("content", cfg.Content, db.StagedItems())
}

func createTask(t *testing.T, b *stages.Board, title, stage string) string {
	t.Helper()
	id, err := b.Create(context.Background(), stages.CreateParams{
		Title: title, Stage: stage, Attrs: map[string]string{"assignee": "me"},
	})
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return id
}

func strPtr(s string) *string { return &s }

func TestCreate_Valid(t *testing.T) {
	tasks, _ := newBoards(t)
	ctx := context.Background()

	id, err := tasks.Create(ctx, stages.CreateParams{
		Title: "  Fix the fence ",
		Stage: "todo",
		Attrs: map[string]string{"assignee": "assistant", "description": "back yard"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := tasks.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Fix the fence" || got.Stage != "todo" || got.Kind != "task" {
		t.Errorf("item = %+v", got)
	}
	if got.Attr("assignee") != "assistant" || got.Attr("description") != "back yard" {
		t.Errorf("attrs = %v", got.Attrs)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("created %v != updated %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tasks, _ := newBoards(t)

	tests := []struct {
		name string
		p    stages.CreateParams
		msg  string
	}{
		{"empty title", stages.CreateParams{Title: " ", Stage: "todo", Attrs: map[string]string{"assignee": "me"}}, "title is required"},
		{"bad stage", stages.CreateParams{Title: "x", Stage: "archived", Attrs: map[string]string{"assignee": "me"}}, "invalid task stage"},
		{"missing assignee", stages.CreateParams{Title: "x", Stage: "todo"}, "assignee is required"},
		{"bad assignee", stages.CreateParams{Title: "x", Stage: "todo", Attrs: map[string]string{"assignee": "dog"}}, "must be one of: me, assistant"},
		{"unknown attr", stages.CreateParams{Title: "x", Stage: "todo", Attrs: map[string]string{"assignee": "me", "color": "red"}}, "unknown task attribute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tasks.Create(context.Background(), tt.p)
			if !apperr.IsValidation(err) {
				t.Fatalf("got %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}

	items, err := tasks.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("rejected creates stored %d items", len(items))
	}
}

func TestTransitionStage_AnyToAny(t *testing.T) {
	tasks, _ := newBoards(t)
	ctx := context.Background()
	id := createTask(t, tasks, "Laundry", "done")

	for _, stage := range []string{"backlog", "in_progress", "todo", "done", "done"} {
		if err := tasks.TransitionStage(ctx, id, stage); err != nil {
			t.Fatalf("TransitionStage(%s): %v", stage, err)
		}
		got, _ := tasks.Get(ctx, id)
		if got.Stage != stage {
			t.Fatalf("stage = %q, want %q", got.Stage, stage)
		}
	}
}

func TestTransitionStage_InvalidLeavesItemUnchanged(t *testing.T) {
	_, content := newBoards(t)
	ctx := context.Background()

	id, err := content.Create(ctx, stages.CreateParams{Title: "Vlog", Stage: "script"})
	if err != nil {
		t.Fatal(err)
	}
	before, _ := content.Get(ctx, id)

	err = content.TransitionStage(ctx, id, "archived")
	if !apperr.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}

	after, _ := content.Get(ctx, id)
	if after.Stage != "script" || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("item changed by rejected transition: %+v", after)
	}
}

func TestTransitionStage_NotFound(t *testing.T) {
	tasks, _ := newBoards(t)
	err := tasks.TransitionStage(context.Background(), "missing", "done")
	if !apperr.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestUpdate_PartialAndRollbackFree(t *testing.T) {
	_, content := newBoards(t)
	ctx := context.Background()

	id, err := content.Create(ctx, stages.CreateParams{
		Title: "Unboxing", Stage: "idea",
		Attrs: map[string]string{"script": "draft", "thumbnail_url": "http://x/y.png"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := content.Update(ctx, id, stages.UpdateParams{
		Stage: strPtr("filming"),
		Attrs: map[string]string{"script": "final", "thumbnail_url": ""},
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := content.Get(ctx, id)
	if got.Title != "Unboxing" || got.Stage != "filming" || got.Attr("script") != "final" {
		t.Errorf("after update: %+v", got)
	}
	if _, ok := got.Attrs["thumbnail_url"]; ok {
		t.Error("thumbnail_url should be cleared")
	}

	// A bad stage in the same call as a valid title must not apply the title.
	err = content.Update(ctx, id, stages.UpdateParams{Title: strPtr("Renamed"), Stage: strPtr("nope")})
	if !apperr.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
	got, _ = content.Get(ctx, id)
	if got.Title != "Unboxing" {
		t.Errorf("title changed by rejected update: %q", got.Title)
	}
}

func TestUpdate_RequiredAttrCannotBeCleared(t *testing.T) {
	tasks, _ := newBoards(t)
	id := createTask(t, tasks, "Dishes", "todo")

	err := tasks.Update(context.Background(), id, stages.UpdateParams{Attrs: map[string]string{"assignee": ""}})
	if !apperr.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	tasks, _ := newBoards(t)
	err := tasks.Update(context.Background(), "missing", stages.UpdateParams{Title: strPtr("x")})
	if !apperr.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	tasks, _ := newBoards(t)
	ctx := context.Background()
	id := createTask(t, tasks, "Trash", "todo")

	for i := 0; i < 2; i++ {
		if err := tasks.Remove(ctx, id); err != nil {
			t.Fatalf("Remove #%d: %v", i+1, err)
		}
	}
	if _, err := tasks.Get(ctx, id); !apperr.IsNotFound(err) {
		t.Fatalf("Get after remove: %v", err)
	}
}

func TestBoards_DoNotShareItems(t *testing.T) {
	tasks, content := newBoards(t)
	ctx := context.Background()
	id := createTask(t, tasks, "Mow", "todo")

	if _, err := content.Get(ctx, id); !apperr.IsNotFound(err) {
		t.Fatalf("content board sees task: %v", err)
	}
	if err := content.Remove(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := tasks.Get(ctx, id); err != nil {
		t.Fatalf("content Remove deleted a task: %v", err)
	}
}

func TestList_Caps(t *testing.T) {
	_, content := newBoards(t)
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		stage := "idea"
		if i < 55 {
			stage = "script"
		}
		if _, err := content.Create(ctx, stages.CreateParams{Title: fmt.Sprintf("video %d", i), Stage: stage}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := content.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 100 {
		t.Errorf("List returned %d, want cap of 100", len(all))
	}
	if all[0].Title != "video 104" {
		t.Errorf("first item = %q, want most recent", all[0].Title)
	}

	scripts, err := content.ListByStage(ctx, "script")
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 50 {
		t.Errorf("ListByStage returned %d, want cap of 50", len(scripts))
	}
	for _, it := range scripts {
		if it.Stage != "script" {
			t.Fatalf("ListByStage leaked stage %q", it.Stage)
		}
	}

	if _, err := content.ListByStage(ctx, "archived"); !apperr.IsValidation(err) {
		t.Errorf("ListByStage(archived) = %v, want validation error", err)
	}
}

func TestCounts_IncludeEmptyStages(t *testing.T) {
	tasks, _ := newBoards(t)
	createTask(t, tasks, "a", "todo")
	createTask(t, tasks, "b", "todo")
	createTask(t, tasks, "c", "in_progress")

	counts, err := tasks.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"backlog": 0, "todo": 2, "in_progress": 1, "done": 0}
	for stage, n := range want {
		if counts[stage] != n {
			t.Errorf("counts[%s] = %d, want %d", stage, counts[stage], n)
		}
	}
	if len(counts) != len(want) {
		t.Errorf("counts has %d stages, want %d", len(counts), len(want))
	}
	if tasks.ActiveStage() != "in_progress" {
		t.Errorf("ActiveStage = %q", tasks.ActiveStage())
	}
}

func TestCounts_KeepItemsInRetiredStages(t *testing.T) {
	db, err := store.Open(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	cfg := config.DefaultConfig().Tasks
	old := stages.NewBoard("task", cfg, db.StagedItems())
	createTask(t, old, "a", "backlog")
	createTask(t, old, "b", "todo")

	cfg.Stages = []string{"todo", "in_progress", "done"}
	current := stages.NewBoard("task", cfg, db.StagedItems())

	counts, err := current.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["backlog"] != 1 || counts["todo"] != 1 || counts["done"] != 0 {
		t.Errorf("counts = %v", counts)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}
