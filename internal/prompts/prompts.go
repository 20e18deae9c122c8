// Package prompts implements the dashboard's MCP prompts.
//
// Prompts are user-triggered workflows (like slash commands) that tell the
// assistant which tools to call and how to present the result.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the dashboard-status MCP prompt.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("dashboard-status",
		mcp.WithPromptDescription(
			"Morning briefing: what is in progress on the task board, what is coming up "+
				"on the calendar, and where the content pipeline stands.",
		),
	)
}

// Handle processes the dashboard-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Mission Control status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Read the `dashboard://summary` resource, then call `tasks_list` with stage `in_progress` " +
						"and `calendar_list` with `upcoming_only` set.\n\n" +
						"Then:\n" +
						"1. Give me the headline numbers in one short paragraph\n" +
						"2. List what is in progress and who owns it (me or the assistant)\n" +
						"3. List what is coming up on the calendar, soonest first\n" +
						"4. Suggest the single most useful next task from the todo column",
				),
			},
		},
	}, nil
}

// DinnerReviewPrompt handles the dinner-review MCP prompt.
type DinnerReviewPrompt struct {
	raters []string
}

// NewDinnerReviewPrompt creates a DinnerReviewPrompt for the rater panel.
func NewDinnerReviewPrompt(raters []string) *DinnerReviewPrompt {
	return &DinnerReviewPrompt{raters: raters}
}

// Definition returns the MCP prompt definition for registration.
func (p *DinnerReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("dinner-review",
		mcp.WithPromptDescription("Collect everyone's verdict on tonight's dinner and record it."),
		mcp.WithArgument("meal",
			mcp.ArgumentDescription("What was served tonight"),
		),
	)
}

// Handle processes the dinner-review prompt request.
func (p *DinnerReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	meal := "tonight's dinner"
	if args := req.Params.Arguments; args != nil {
		if m, ok := args["meal"]; ok && m != "" {
			meal = m
		}
	}

	text := fmt.Sprintf(
		"Let's review %s.\n\n"+
			"1. Ask each of %s for a thumbs up or thumbs down. Anyone may skip.\n"+
			"2. Ask who cooked and whether there are any comments.\n"+
			"3. Call `meals_rate` with the meal name and the verdicts you collected.\n"+
			"4. Call `meals_top_rated` and tell me where this meal now ranks.",
		meal, strings.Join(p.raters, ", "),
	)
	return &mcp.GetPromptResult{
		Description: "Dinner review",
		Messages: []mcp.PromptMessage{
			{Role: mcp.RoleUser, Content: mcp.NewTextContent(text)},
		},
	}, nil
}
