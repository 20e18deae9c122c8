package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/calendar"
)

// CalendarListTool handles calendar_list.
type CalendarListTool struct {
	svc *calendar.Service
}

// NewCalendarListTool creates a CalendarListTool.
func NewCalendarListTool(svc *calendar.Service) *CalendarListTool {
	return &CalendarListTool{svc: svc}
}

// Definition returns the MCP tool definition for calendar_list.
func (t *CalendarListTool) Definition() mcp.Tool {
	return mcp.NewTool("calendar_list",
		mcp.WithDescription("List scheduled tasks. With `upcoming_only`, list only incomplete tasks scheduled in the future, soonest first."),
		mcp.WithBoolean("upcoming_only", mcp.Description("Only incomplete future tasks (default: false)")),
	)
}

// Handle processes the calendar_list tool call.
func (t *CalendarListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		list []calendar.ScheduledTask
		err  error
	)
	if boolArg(req, "upcoming_only", false) {
		list, err = t.svc.Upcoming(ctx, timeNow())
	} else {
		list, err = t.svc.List(ctx)
	}
	if err != nil {
		return errorResult(err)
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No scheduled tasks."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n\n", plural(len(list), "scheduled task"))
	for _, st := range list {
		mark := " "
		if st.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s, %s (%s, id: %s)", mark, st.Title,
			st.ScheduledAt.Format(time.RFC3339), ago(st.ScheduledAt), st.ID)
		if st.Recurrence != "" {
			fmt.Fprintf(&b, " repeats %s", st.Recurrence)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// CalendarCreateTool handles calendar_create.
type CalendarCreateTool struct {
	svc *calendar.Service
}

// NewCalendarCreateTool creates a CalendarCreateTool.
func NewCalendarCreateTool(svc *calendar.Service) *CalendarCreateTool {
	return &CalendarCreateTool{svc: svc}
}

// Definition returns the MCP tool definition for calendar_create.
func (t *CalendarCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("calendar_create",
		mcp.WithDescription("Schedule a task on the family calendar."),
		mcp.WithString("title", mcp.Required(), mcp.Description("What needs to happen")),
		mcp.WithString("scheduled_at", mcp.Required(), mcp.Description("When, as an RFC 3339 timestamp (2026-05-04T09:30:00Z)")),
		mcp.WithString("recurrence", mcp.Description("Free-text recurrence, e.g. weekly")),
	)
}

// Handle processes the calendar_create tool call.
func (t *CalendarCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	at, ok := timeArg(req, "scheduled_at")
	if !ok {
		return mcp.NewToolResultError("'scheduled_at' must be an RFC 3339 timestamp"), nil
	}
	id, err := t.svc.Create(ctx, calendar.CreateParams{
		Title:       req.GetString("title", ""),
		ScheduledAt: at,
		Recurrence:  req.GetString("recurrence", ""),
	})
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Scheduled `%s` for %s.", id, at.UTC().Format(time.RFC3339))), nil
}

// CalendarUpdateTool handles calendar_update.
type CalendarUpdateTool struct {
	svc *calendar.Service
}

// NewCalendarUpdateTool creates a CalendarUpdateTool.
func NewCalendarUpdateTool(svc *calendar.Service) *CalendarUpdateTool {
	return &CalendarUpdateTool{svc: svc}
}

// Definition returns the MCP tool definition for calendar_update.
func (t *CalendarUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("calendar_update",
		mcp.WithDescription("Update a scheduled task. Only the supplied fields change; an empty recurrence clears it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Scheduled task id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("scheduled_at", mcp.Description("New time, RFC 3339")),
		mcp.WithString("recurrence", mcp.Description("New recurrence")),
		mcp.WithBoolean("completed", mcp.Description("Mark done or not done")),
	)
}

// Handle processes the calendar_update tool call.
func (t *CalendarUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	p := calendar.UpdateParams{
		Title:      optString(req, "title"),
		Recurrence: optString(req, "recurrence"),
		Completed:  optBool(req, "completed"),
	}
	if req.GetString("scheduled_at", "") != "" {
		at, ok := timeArg(req, "scheduled_at")
		if !ok {
			return mcp.NewToolResultError("'scheduled_at' must be an RFC 3339 timestamp"), nil
		}
		p.ScheduledAt = &at
	}
	if err := t.svc.Update(ctx, id, p); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated scheduled task `%s`.", id)), nil
}

// CalendarDeleteTool handles calendar_delete.
type CalendarDeleteTool struct {
	svc *calendar.Service
}

// NewCalendarDeleteTool creates a CalendarDeleteTool.
func NewCalendarDeleteTool(svc *calendar.Service) *CalendarDeleteTool {
	return &CalendarDeleteTool{svc: svc}
}

// Definition returns the MCP tool definition for calendar_delete.
func (t *CalendarDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("calendar_delete",
		mcp.WithDescription("Delete a scheduled task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Scheduled task id")),
	)
}

// Handle processes the calendar_delete tool call.
func (t *CalendarDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.svc.Remove(ctx, id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted scheduled task `%s`.", id)), nil
}
