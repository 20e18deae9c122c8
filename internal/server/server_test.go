package server

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/HendryAvila/mission-control/internal/config"
	"github.com/HendryAvila/mission-control/internal/logger"
)

func TestNew_RegistersEveryTool(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	svcs, cleanup, err := Bootstrap(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	defer cleanup()

	s := New(svcs)
	ctx := context.Background()

	initMsg := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`
	s.HandleMessage(ctx, json.RawMessage(initMsg))

	resp := s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}

	got := make(map[string]bool)
	for _, tl := range out.Result.Tools {
		got[tl.Name] = true
	}
	want := []string{
		"tasks_list", "tasks_create", "tasks_move", "tasks_update", "tasks_delete",
		"content_list", "content_create", "content_move", "content_update", "content_delete",
		"calendar_list", "calendar_create", "calendar_update", "calendar_delete",
		"memory_list", "memory_search", "memory_create", "memory_update", "memory_delete",
		"team_list", "team_create", "team_set_status", "team_delete",
		"meals_list", "meals_rate", "meals_top_rated", "meals_recent_ratings", "meals_delete",
		"meals_delete_rating",
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("tool %s not registered", name)
		}
	}
	if len(got) != len(want) {
		names := make([]string, 0, len(got))
		for n := range got {
			names = append(names, n)
		}
		sort.Strings(names)
		t.Errorf("registered %d tools, want %d: %v", len(got), len(want), names)
	}
}

func TestBootstrap_BadDataDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = "/dev/null/not-a-dir"

	_, cleanup, err := Bootstrap(cfg, logger.Nop())
	if err == nil {
		t.Fatal("expected error")
	}
	cleanup()
}
