package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/team"
)

// TeamListTool handles team_list.
type TeamListTool struct {
	svc *team.Service
}

// NewTeamListTool creates a TeamListTool.
func NewTeamListTool(svc *team.Service) *TeamListTool {
	return &TeamListTool{svc: svc}
}

// Definition returns the MCP tool definition for team_list.
func (t *TeamListTool) Definition() mcp.Tool {
	return mcp.NewTool("team_list",
		mcp.WithDescription("List the agents on the team roster with their role, status and responsibilities."),
	)
}

// Handle processes the team_list tool call.
func (t *TeamListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents, err := t.svc.List(ctx)
	if err != nil {
		return errorResult(err)
	}
	if len(agents) == 0 {
		return mcp.NewToolResultText("The team roster is empty."), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n\n", plural(len(agents), "agent"))
	for _, a := range agents {
		fmt.Fprintf(&b, "- %s (%s) [%s] id: %s\n", a.Name, a.Role, a.Status, a.ID)
		for _, r := range a.Responsibilities {
			fmt.Fprintf(&b, "    * %s\n", r)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// TeamCreateTool handles team_create.
type TeamCreateTool struct {
	svc *team.Service
}

// NewTeamCreateTool creates a TeamCreateTool.
func NewTeamCreateTool(svc *team.Service) *TeamCreateTool {
	return &TeamCreateTool{svc: svc}
}

// Definition returns the MCP tool definition for team_create.
func (t *TeamCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("team_create",
		mcp.WithDescription("Add an agent to the team roster."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Agent name")),
		mcp.WithString("role", mcp.Required(), mcp.Description("What the agent does")),
		mcp.WithString("responsibilities", mcp.Description("Comma-separated list of responsibilities")),
		mcp.WithString("status", mcp.Description("Initial status (default: first configured status)"), mcp.Enum(t.svc.Statuses()...)),
		mcp.WithString("avatar", mcp.Description("Avatar URL or emoji")),
	)
}

// Handle processes the team_create tool call.
func (t *TeamCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	if status == "" {
		if statuses := t.svc.Statuses(); len(statuses) > 0 {
			status = statuses[0]
		}
	}
	id, err := t.svc.Create(ctx, team.CreateParams{
		Name:             req.GetString("name", ""),
		Role:             req.GetString("role", ""),
		Responsibilities: stringsArg(req, "responsibilities"),
		Status:           status,
		Avatar:           req.GetString("avatar", ""),
	})
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added agent `%s` (%s).", id, status)), nil
}

// TeamSetStatusTool handles team_set_status.
type TeamSetStatusTool struct {
	svc *team.Service
}

// NewTeamSetStatusTool creates a TeamSetStatusTool.
func NewTeamSetStatusTool(svc *team.Service) *TeamSetStatusTool {
	return &TeamSetStatusTool{svc: svc}
}

// Definition returns the MCP tool definition for team_set_status.
func (t *TeamSetStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("team_set_status",
		mcp.WithDescription("Change an agent's status."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Agent id")),
		mcp.WithString("status", mcp.Required(), mcp.Description("New status"), mcp.Enum(t.svc.Statuses()...)),
	)
}

// Handle processes the team_set_status tool call.
func (t *TeamSetStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	status := req.GetString("status", "")
	if err := t.svc.SetStatus(ctx, id, status); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Agent `%s` is now %s.", id, status)), nil
}

// TeamDeleteTool handles team_delete.
type TeamDeleteTool struct {
	svc *team.Service
}

// NewTeamDeleteTool creates a TeamDeleteTool.
func NewTeamDeleteTool(svc *team.Service) *TeamDeleteTool {
	return &TeamDeleteTool{svc: svc}
}

// Definition returns the MCP tool definition for team_delete.
func (t *TeamDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("team_delete",
		mcp.WithDescription("Remove an agent from the roster."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Agent id")),
	)
}

// Handle processes the team_delete tool call.
func (t *TeamDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.svc.Remove(ctx, id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed agent `%s`.", id)), nil
}
