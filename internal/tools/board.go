package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/stages"
)

// The board tools serve both the task board ("tasks_*") and the content
// pipeline ("content_*"). Stage and attribute parameters are generated
// from the board's configuration.

// BoardListTool handles <prefix>_list.
type BoardListTool struct {
	board  *stages.Board
	prefix string
}

// NewBoardListTool creates a BoardListTool.
func NewBoardListTool(board *stages.Board, prefix string) *BoardListTool {
	return &BoardListTool{board: board, prefix: prefix}
}

// Definition returns the MCP tool definition.
func (t *BoardListTool) Definition() mcp.Tool {
	return mcp.NewTool(t.prefix+"_list",
		mcp.WithDescription(fmt.Sprintf(
			"List %s items, most recently created first, with per-stage counts. "+
				"Pass `stage` to show a single column of the board.", t.board.Kind())),
		mcp.WithString("stage",
			mcp.Description("Only list items in this stage"),
			mcp.Enum(t.board.Stages()...),
		),
	)
}

// Handle processes the list call.
func (t *BoardListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stage := req.GetString("stage", "")

	var (
		items []stages.Item
		err   error
	)
	if stage != "" {
		items, err = t.board.ListByStage(ctx, stage)
	} else {
		items, err = t.board.List(ctx)
	}
	if err != nil {
		return errorResult(err)
	}
	counts, err := t.board.Counts(ctx)
	if err != nil {
		return errorResult(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s board\n\n", strings.ToUpper(t.board.Kind()[:1])+t.board.Kind()[1:])
	for _, s := range t.board.Stages() {
		fmt.Fprintf(&b, "- %s: %d\n", s, counts[s])
	}
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString("No items found.\n")
		return mcp.NewToolResultText(b.String()), nil
	}
	for _, it := range items {
		writeItem(&b, t.board, it)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func writeItem(b *strings.Builder, board *stages.Board, it stages.Item) {
	fmt.Fprintf(b, "- [%s] %s (id: %s, updated %s)\n", it.Stage, it.Title, it.ID, ago(it.UpdatedAt))
	for _, name := range board.AttributeNames() {
		if v := it.Attr(name); v != "" {
			fmt.Fprintf(b, "    %s: %s\n", name, v)
		}
	}
}

// withAttributes adds one string parameter per configured attribute.
func withAttributes(board *stages.Board) []mcp.ToolOption {
	var opts []mcp.ToolOption
	for _, name := range board.AttributeNames() {
		propOpts := []mcp.PropertyOption{mcp.Description(attrDescription(board, name))}
		if allowed := board.AllowedValues(name); len(allowed) > 0 {
			propOpts = append(propOpts, mcp.Enum(allowed...))
		}
		opts = append(opts, mcp.WithString(name, propOpts...))
	}
	return opts
}

func attrDescription(board *stages.Board, name string) string {
	d := strings.ReplaceAll(name, "_", " ")
	if allowed := board.AllowedValues(name); len(allowed) > 0 {
		d += " (" + strings.Join(allowed, " | ") + ")"
	}
	return d
}

// attributesFrom collects the configured attributes present in req.
func attributesFrom(board *stages.Board, req mcp.CallToolRequest) map[string]string {
	attrs := make(map[string]string)
	for _, name := range board.AttributeNames() {
		if v := optString(req, name); v != nil {
			attrs[name] = *v
		}
	}
	return attrs
}

// BoardCreateTool handles <prefix>_create.
type BoardCreateTool struct {
	board  *stages.Board
	prefix string
}

// NewBoardCreateTool creates a BoardCreateTool.
func NewBoardCreateTool(board *stages.Board, prefix string) *BoardCreateTool {
	return &BoardCreateTool{board: board, prefix: prefix}
}

// Definition returns the MCP tool definition.
func (t *BoardCreateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(fmt.Sprintf("Create a %s item in the given stage.", t.board.Kind())),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title")),
		mcp.WithString("stage", mcp.Required(), mcp.Description("Initial stage"), mcp.Enum(t.board.Stages()...)),
	}
	opts = append(opts, withAttributes(t.board)...)
	return mcp.NewTool(t.prefix+"_create", opts...)
}

// Handle processes the create call.
func (t *BoardCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.board.Create(ctx, stages.CreateParams{
		Title: req.GetString("title", ""),
		Stage: req.GetString("stage", ""),
		Attrs: attributesFrom(t.board, req),
	})
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created %s `%s` in stage %s.", t.board.Kind(), id, req.GetString("stage", ""))), nil
}

// BoardMoveTool handles <prefix>_move.
type BoardMoveTool struct {
	board  *stages.Board
	prefix string
}

// NewBoardMoveTool creates a BoardMoveTool.
func NewBoardMoveTool(board *stages.Board, prefix string) *BoardMoveTool {
	return &BoardMoveTool{board: board, prefix: prefix}
}

// Definition returns the MCP tool definition.
func (t *BoardMoveTool) Definition() mcp.Tool {
	return mcp.NewTool(t.prefix+"_move",
		mcp.WithDescription(fmt.Sprintf(
			"Move a %s item to another stage. Any stage can be reached from any other.", t.board.Kind())),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithString("stage", mcp.Required(), mcp.Description("Target stage"), mcp.Enum(t.board.Stages()...)),
	)
}

// Handle processes the move call.
func (t *BoardMoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	stage := req.GetString("stage", "")
	if err := t.board.TransitionStage(ctx, id, stage); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved %s `%s` to %s.", t.board.Kind(), id, stage)), nil
}

// BoardUpdateTool handles <prefix>_update.
type BoardUpdateTool struct {
	board  *stages.Board
	prefix string
}

// NewBoardUpdateTool creates a BoardUpdateTool.
func NewBoardUpdateTool(board *stages.Board, prefix string) *BoardUpdateTool {
	return &BoardUpdateTool{board: board, prefix: prefix}
}

// Definition returns the MCP tool definition.
func (t *BoardUpdateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(fmt.Sprintf(
			"Update fields of a %s item. Only the supplied fields change; "+
				"pass an empty string to clear an optional attribute.", t.board.Kind())),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("stage", mcp.Description("New stage"), mcp.Enum(t.board.Stages()...)),
	}
	opts = append(opts, withAttributes(t.board)...)
	return mcp.NewTool(t.prefix+"_update", opts...)
}

// Handle processes the update call.
func (t *BoardUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	p := stages.UpdateParams{
		Title: optString(req, "title"),
		Stage: optString(req, "stage"),
		Attrs: attributesFrom(t.board, req),
	}
	if p.IsEmpty() {
		return mcp.NewToolResultError("nothing to update: pass at least one field"), nil
	}
	if err := t.board.Update(ctx, id, p); err != nil {
		return errorResult(err)
	}
	item, err := t.board.Get(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Updated %s:\n", t.board.Kind())
	writeItem(&b, t.board, *item)
	return mcp.NewToolResultText(b.String()), nil
}

// BoardDeleteTool handles <prefix>_delete.
type BoardDeleteTool struct {
	board  *stages.Board
	prefix string
}

// NewBoardDeleteTool creates a BoardDeleteTool.
func NewBoardDeleteTool(board *stages.Board, prefix string) *BoardDeleteTool {
	return &BoardDeleteTool{board: board, prefix: prefix}
}

// Definition returns the MCP tool definition.
func (t *BoardDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool(t.prefix+"_delete",
		mcp.WithDescription(fmt.Sprintf("Delete a %s item. Deleting an unknown id is not an error.", t.board.Kind())),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	)
}

// Handle processes the delete call.
func (t *BoardDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.board.Remove(ctx, id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s `%s`.", t.board.Kind(), id)), nil
}
