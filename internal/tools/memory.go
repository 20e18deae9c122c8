package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/notes"
)

const snippetLen = 300

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}

func writeNotes(b *strings.Builder, list []notes.Note) {
	for i, n := range list {
		fmt.Fprintf(b, "[%d] %s (%s, id: %s)\n    %s\n\n", i+1, n.Title, n.Date, n.ID, snippet(n.Content))
	}
}

// MemoryListTool handles memory_list.
type MemoryListTool struct {
	svc *notes.Service
}

// NewMemoryListTool creates a MemoryListTool.
func NewMemoryListTool(svc *notes.Service) *MemoryListTool {
	return &MemoryListTool{svc: svc}
}

// Definition returns the MCP tool definition for memory_list.
func (t *MemoryListTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_list",
		mcp.WithDescription("List every memory note, most recent first."),
	)
}

// Handle processes the memory_list tool call.
func (t *MemoryListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := t.svc.List(ctx)
	if err != nil {
		return errorResult(err)
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No memories saved yet."), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n\n", plural(len(list), "memory note"))
	writeNotes(&b, list)
	return mcp.NewToolResultText(b.String()), nil
}

// MemorySearchTool handles memory_search.
type MemorySearchTool struct {
	svc *notes.Service
}

// NewMemorySearchTool creates a MemorySearchTool.
func NewMemorySearchTool(svc *notes.Service) *MemorySearchTool {
	return &MemorySearchTool{svc: svc}
}

// Definition returns the MCP tool definition for memory_search.
func (t *MemorySearchTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_search",
		mcp.WithDescription("Full-text search over memory note titles and content. Best matches first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Keywords to look for")),
		mcp.WithNumber("limit", mcp.Description("Max results (default and max: 20)")),
	)
}

// Handle processes the memory_search tool call.
func (t *MemorySearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	list, err := t.svc.Search(ctx, query, intArg(req, "limit", 0))
	if err != nil {
		return errorResult(err)
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No memories found matching your query."), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %s:\n\n", plural(len(list), "memory"))
	writeNotes(&b, list)
	return mcp.NewToolResultText(b.String()), nil
}

// MemoryCreateTool handles memory_create.
type MemoryCreateTool struct {
	svc *notes.Service
}

// NewMemoryCreateTool creates a MemoryCreateTool.
func NewMemoryCreateTool(svc *notes.Service) *MemoryCreateTool {
	return &MemoryCreateTool{svc: svc}
}

// Definition returns the MCP tool definition for memory_create.
func (t *MemoryCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_create",
		mcp.WithDescription("Save a dated memory note."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note body")),
		mcp.WithString("date", mcp.Description("Date the note refers to, YYYY-MM-DD (default: today)")),
	)
}

// Handle processes the memory_create tool call.
func (t *MemoryCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := req.GetString("date", "")
	if date == "" {
		date = timeNow().Format("2006-01-02")
	}
	id, err := t.svc.Create(ctx, notes.CreateParams{
		Title:   req.GetString("title", ""),
		Content: req.GetString("content", ""),
		Date:    date,
	})
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved memory `%s` dated %s.", id, date)), nil
}

// MemoryUpdateTool handles memory_update.
type MemoryUpdateTool struct {
	svc *notes.Service
}

// NewMemoryUpdateTool creates a MemoryUpdateTool.
func NewMemoryUpdateTool(svc *notes.Service) *MemoryUpdateTool {
	return &MemoryUpdateTool{svc: svc}
}

// Definition returns the MCP tool definition for memory_update.
func (t *MemoryUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_update",
		mcp.WithDescription("Update a memory note. Only the supplied fields change."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New body")),
		mcp.WithString("date", mcp.Description("New date, YYYY-MM-DD")),
	)
}

// Handle processes the memory_update tool call.
func (t *MemoryUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	p := notes.UpdateParams{
		Title:   optString(req, "title"),
		Content: optString(req, "content"),
		Date:    optString(req, "date"),
	}
	if p.Title == nil && p.Content == nil && p.Date == nil {
		return mcp.NewToolResultError("nothing to update: pass title, content or date"), nil
	}
	if err := t.svc.Update(ctx, id, p); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated memory `%s`.", id)), nil
}

// MemoryDeleteTool handles memory_delete.
type MemoryDeleteTool struct {
	svc *notes.Service
}

// NewMemoryDeleteTool creates a MemoryDeleteTool.
func NewMemoryDeleteTool(svc *notes.Service) *MemoryDeleteTool {
	return &MemoryDeleteTool{svc: svc}
}

// Definition returns the MCP tool definition for memory_delete.
func (t *MemoryDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_delete",
		mcp.WithDescription("Delete a memory note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	)
}

// Handle processes the memory_delete tool call.
func (t *MemoryDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.svc.Remove(ctx, id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted memory `%s`.", id)), nil
}
