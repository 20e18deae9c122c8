package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/calendar"
	"github.com/HendryAvila/mission-control/internal/config"
	"github.com/HendryAvila/mission-control/internal/meals"
	"github.com/HendryAvila/mission-control/internal/notes"
	"github.com/HendryAvila/mission-control/internal/stages"
	"github.com/HendryAvila/mission-control/internal/store"
	"github.com/HendryAvila/mission-control/internal/team"
)

// --- Test helpers ---

type fixture struct {
	tasks    *stages.Board
	content  *stages.Board
	calendar *calendar.Service
	notes    *notes.Service
	team     *team.Service
	meals    *meals.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.DefaultConfig()
	return &fixture{
		tasks:    stages.NewBoard("task", cfg.Tasks, db.StagedItems()),
		content:  stages.NewBoard("content", cfg.Content, db.StagedItems()),
		calendar: calendar.NewService(db.ScheduledTasks()),
		notes:    notes.NewService(db.Notes(), cfg.NoteSearchLimit),
		team:     team.NewService(db.Agents(), cfg.AgentStatuses),
		meals:    meals.NewService(db.Meals(), cfg.Meals),
	}
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type handler interface {
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func call(t *testing.T, h handler, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	res, err := h.Handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("Handle returned Go error: %v", err)
	}
	return res
}

func mustOK(t *testing.T, h handler, args map[string]interface{}) string {
	t.Helper()
	res := call(t, h, args)
	if res.IsError {
		t.Fatalf("expected success, got error: %s", resultText(res))
	}
	return resultText(res)
}

func mustFail(t *testing.T, h handler, args map[string]interface{}, contains string) {
	t.Helper()
	res := call(t, h, args)
	if !res.IsError {
		t.Fatalf("expected error result, got: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), contains) {
		t.Errorf("error %q does not contain %q", resultText(res), contains)
	}
}

// idFrom pulls the first `backticked` id out of a tool response.
func idFrom(t *testing.T, text string) string {
	t.Helper()
	start := strings.Index(text, "`")
	end := strings.Index(text[start+1:], "`")
	if start < 0 || end < 0 {
		t.Fatalf("no id in %q", text)
	}
	return text[start+1 : start+1+end]
}

// --- Definitions ---

func TestDefinitions(t *testing.T) {
	f := newFixture(t)
	defs := map[string]mcp.Tool{
		"tasks_create":    NewBoardCreateTool(f.tasks, "tasks").Definition(),
		"content_move":    NewBoardMoveTool(f.content, "content").Definition(),
		"calendar_create": NewCalendarCreateTool(f.calendar).Definition(),
		"memory_search":   NewMemorySearchTool(f.notes).Definition(),
		"team_set_status": NewTeamSetStatusTool(f.team).Definition(),
		"meals_rate":      NewMealsRateTool(f.meals).Definition(),
	}
	for name, def := range defs {
		if def.Name != name {
			t.Errorf("definition name = %q, want %q", def.Name, name)
		}
	}

	create := defs["tasks_create"]
	if _, ok := create.InputSchema.Properties["assignee"]; !ok {
		t.Error("tasks_create should expose the assignee attribute")
	}
	rate := defs["meals_rate"]
	for _, rater := range []string{"Roman", "Harlan", "Pam", "Brian"} {
		if _, ok := rate.InputSchema.Properties[rater]; !ok {
			t.Errorf("meals_rate missing rater parameter %s", rater)
		}
	}
}

// --- Board tools ---

func TestBoardTools_Lifecycle(t *testing.T) {
	f := newFixture(t)

	text := mustOK(t, NewBoardCreateTool(f.tasks, "tasks"), map[string]interface{}{
		"title": "Clean garage", "stage": "todo", "assignee": "assistant",
	})
	id := idFrom(t, text)

	mustOK(t, NewBoardMoveTool(f.tasks, "tasks"), map[string]interface{}{"id": id, "stage": "in_progress"})

	text = mustOK(t, NewBoardUpdateTool(f.tasks, "tasks"), map[string]interface{}{
		"id": id, "description": "sort the boxes",
	})
	if !strings.Contains(text, "[in_progress] Clean garage") || !strings.Contains(text, "sort the boxes") {
		t.Errorf("update output = %s", text)
	}

	text = mustOK(t, NewBoardListTool(f.tasks, "tasks"), map[string]interface{}{})
	if !strings.Contains(text, "in_progress: 1") || !strings.Contains(text, id) {
		t.Errorf("list output = %s", text)
	}

	mustOK(t, NewBoardDeleteTool(f.tasks, "tasks"), map[string]interface{}{"id": id})
	text = mustOK(t, NewBoardListTool(f.tasks, "tasks"), map[string]interface{}{"stage": "in_progress"})
	if !strings.Contains(text, "No items found") {
		t.Errorf("list after delete = %s", text)
	}
}

func TestBoardTools_Errors(t *testing.T) {
	f := newFixture(t)

	mustFail(t, NewBoardCreateTool(f.content, "content"), map[string]interface{}{"title": "Vlog", "stage": "archived"}, "invalid content stage")
	mustFail(t, NewBoardMoveTool(f.content, "content"), map[string]interface{}{"id": "missing", "stage": "idea"}, "not found")
	mustFail(t, NewBoardUpdateTool(f.content, "content"), map[string]interface{}{"id": "missing"}, "nothing to update")
	mustFail(t, NewBoardDeleteTool(f.content, "content"), map[string]interface{}{}, "'id' is required")
	mustFail(t, NewBoardListTool(f.content, "content"), map[string]interface{}{"stage": "archived"}, "invalid content stage")
}

// --- Calendar tools ---

func TestCalendarTools(t *testing.T) {
	f := newFixture(t)
	orig := timeNow
	timeNow = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = orig })

	id := idFrom(t, mustOK(t, NewCalendarCreateTool(f.calendar), map[string]interface{}{
		"title": "Piano lesson", "scheduled_at": "2026-05-04T16:00:00Z", "recurrence": "weekly",
	}))
	mustFail(t, NewCalendarCreateTool(f.calendar), map[string]interface{}{"title": "x", "scheduled_at": "next tuesday"}, "RFC 3339")

	text := mustOK(t, NewCalendarListTool(f.calendar), map[string]interface{}{"upcoming_only": true})
	if !strings.Contains(text, "Piano lesson") || !strings.Contains(text, "repeats weekly") {
		t.Errorf("upcoming = %s", text)
	}

	mustOK(t, NewCalendarUpdateTool(f.calendar), map[string]interface{}{"id": id, "completed": true})
	text = mustOK(t, NewCalendarListTool(f.calendar), map[string]interface{}{"upcoming_only": true})
	if !strings.Contains(text, "No scheduled tasks") {
		t.Errorf("completed task still upcoming: %s", text)
	}
	text = mustOK(t, NewCalendarListTool(f.calendar), map[string]interface{}{})
	if !strings.Contains(text, "[x] Piano lesson") {
		t.Errorf("list = %s", text)
	}

	mustFail(t, NewCalendarUpdateTool(f.calendar), map[string]interface{}{"id": "missing", "title": "x"}, "not found")
	mustOK(t, NewCalendarDeleteTool(f.calendar), map[string]interface{}{"id": id})
}

// --- Memory tools ---

func TestMemoryTools(t *testing.T) {
	f := newFixture(t)

	id := idFrom(t, mustOK(t, NewMemoryCreateTool(f.notes), map[string]interface{}{
		"title": "Wifi", "content": "guest password is on the fridge", "date": "2026-02-14",
	}))
	mustFail(t, NewMemoryCreateTool(f.notes), map[string]interface{}{"title": "x", "content": "y", "date": "Feb 14"}, "invalid date")

	text := mustOK(t, NewMemorySearchTool(f.notes), map[string]interface{}{"query": "fridge"})
	if !strings.Contains(text, "Found 1 memory") || !strings.Contains(text, "Wifi") {
		t.Errorf("search = %s", text)
	}
	mustFail(t, NewMemorySearchTool(f.notes), map[string]interface{}{}, "'query' is required")

	mustOK(t, NewMemoryUpdateTool(f.notes), map[string]interface{}{"id": id, "title": "Guest wifi"})
	text = mustOK(t, NewMemoryListTool(f.notes), map[string]interface{}{})
	if !strings.Contains(text, "Guest wifi (2026-02-14") {
		t.Errorf("list = %s", text)
	}

	mustOK(t, NewMemoryDeleteTool(f.notes), map[string]interface{}{"id": id})
	text = mustOK(t, NewMemoryListTool(f.notes), map[string]interface{}{})
	if !strings.Contains(text, "No memories") {
		t.Errorf("list after delete = %s", text)
	}
}

// --- Team tools ---

func TestTeamTools(t *testing.T) {
	f := newFixture(t)

	text := mustOK(t, NewTeamCreateTool(f.team), map[string]interface{}{
		"name": "Planner", "role": "weekly planning", "responsibilities": "menus, calendar",
	})
	id := idFrom(t, text)
	if !strings.Contains(text, "(active)") {
		t.Errorf("default status not applied: %s", text)
	}

	mustOK(t, NewTeamSetStatusTool(f.team), map[string]interface{}{"id": id, "status": "idle"})
	mustFail(t, NewTeamSetStatusTool(f.team), map[string]interface{}{"id": id, "status": "asleep"}, "invalid agent status")

	text = mustOK(t, NewTeamListTool(f.team), map[string]interface{}{})
	if !strings.Contains(text, "Planner (weekly planning) [idle]") || !strings.Contains(text, "* calendar") {
		t.Errorf("list = %s", text)
	}

	mustOK(t, NewTeamDeleteTool(f.team), map[string]interface{}{"id": id})
}

// --- Meals tools ---

func TestMealsTools(t *testing.T) {
	f := newFixture(t)

	rate := NewMealsRateTool(f.meals)
	text := mustOK(t, rate, map[string]interface{}{
		"name": "Lasagna", "date": "2026-03-01", "chef": "Pam",
		"Roman": "up", "Harlan": "up", "Pam": "down",
	})
	if !strings.Contains(text, "2 of 3 votes up") {
		t.Errorf("rate output = %s", text)
	}
	mustOK(t, rate, map[string]interface{}{
		"name": "Lasagna", "date": "2026-03-08", "Roman": "up", "Brian": "up", "Pam": "down",
	})
	mustOK(t, rate, map[string]interface{}{"name": "Toast", "date": "2026-03-02"})
	mustFail(t, rate, map[string]interface{}{"name": "Soup", "Roman": "meh"}, "invalid verdict")

	text = mustOK(t, NewMealsTopRatedTool(f.meals), map[string]interface{}{})
	if !strings.Contains(text, "1. Lasagna: 67% (4 of 6 votes up)") {
		t.Errorf("top rated = %s", text)
	}
	if strings.Contains(text, "Toast") {
		t.Errorf("meal without votes ranked: %s", text)
	}

	text = mustOK(t, NewMealsRecentRatingsTool(f.meals), map[string]interface{}{"limit": float64(1)})
	if !strings.Contains(text, "Toast on 2026-03-02") || strings.Contains(text, "Lasagna") {
		t.Errorf("recent ratings = %s", text)
	}

	list, err := f.meals.ListMeals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var lasagna string
	for _, m := range list {
		if m.Name == "Lasagna" {
			lasagna = m.ID
		}
	}
	mustOK(t, NewMealsDeleteTool(f.meals), map[string]interface{}{"id": lasagna})

	text = mustOK(t, NewMealsTopRatedTool(f.meals), map[string]interface{}{})
	if !strings.Contains(text, "No meal has any votes") {
		t.Errorf("top rated after delete = %s", text)
	}
	text = mustOK(t, NewMealsListTool(f.meals), map[string]interface{}{})
	if !strings.Contains(text, "1 meal:") || !strings.Contains(text, "Toast") {
		t.Errorf("meals list = %s", text)
	}
}

func TestErrorResult_UnclassifiedIsGoError(t *testing.T) {
	res, err := errorResult(context.Canceled)
	if err == nil || res != nil {
		t.Fatalf("got %v, %v; want Go error", res, err)
	}
}

func TestStringsArg(t *testing.T) {
	got := stringsArg(makeReq(map[string]interface{}{"r": []interface{}{"a", 1, "b"}}), "r")
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("array form = %v", got)
	}
	got = stringsArg(makeReq(map[string]interface{}{"r": "a,b,c"}), "r")
	if len(got) != 3 {
		t.Errorf("comma form = %v", got)
	}
	if got := stringsArg(makeReq(nil), "r"); got != nil {
		t.Errorf("missing = %v", got)
	}
}
