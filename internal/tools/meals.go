package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/meals"
)

// MealsListTool handles meals_list.
type MealsListTool struct {
	svc *meals.Service
}

// NewMealsListTool creates a MealsListTool.
func NewMealsListTool(svc *meals.Service) *MealsListTool {
	return &MealsListTool{svc: svc}
}

// Definition returns the MCP tool definition for meals_list.
func (t *MealsListTool) Definition() mcp.Tool {
	return mcp.NewTool("meals_list",
		mcp.WithDescription("List every meal the family has rated, with its chef and when it was last served."),
	)
}

// Handle processes the meals_list tool call.
func (t *MealsListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := t.svc.ListMeals(ctx)
	if err != nil {
		return errorResult(err)
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No meals recorded yet."), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n\n", plural(len(list), "meal"))
	for _, m := range list {
		fmt.Fprintf(&b, "- %s", m.Name)
		if m.Chef != "" {
			fmt.Fprintf(&b, " by %s", m.Chef)
		}
		fmt.Fprintf(&b, ", served %s (id: %s)\n", ago(m.LastServed), m.ID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// MealsRateTool handles meals_rate: it resolves the meal by name, creating
// it on first use, and records one rating event.
type MealsRateTool struct {
	svc *meals.Service
}

// NewMealsRateTool creates a MealsRateTool.
func NewMealsRateTool(svc *meals.Service) *MealsRateTool {
	return &MealsRateTool{svc: svc}
}

// Definition returns the MCP tool definition for meals_rate. There is one
// optional up/down parameter per rater on the panel.
func (t *MealsRateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Record the family's verdicts on tonight's meal. The meal is matched by exact name " +
				"and created if new. Raters who did not vote are simply left out.",
		),
		mcp.WithString("name", mcp.Required(), mcp.Description("Meal name, e.g. Lasagna")),
		mcp.WithString("date", mcp.Description("Date served, YYYY-MM-DD (default: today)")),
		mcp.WithString("chef", mcp.Description("Who cooked")),
		mcp.WithString("comments", mcp.Description("Free-text comments")),
	}
	for _, rater := range t.svc.Raters() {
		opts = append(opts, mcp.WithString(rater,
			mcp.Description(rater+"'s verdict"),
			mcp.Enum(string(meals.Up), string(meals.Down)),
		))
	}
	return mcp.NewTool("meals_rate", opts...)
}

// Handle processes the meals_rate tool call.
func (t *MealsRateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := req.GetString("date", "")
	if date == "" {
		date = timeNow().Format("2006-01-02")
	}
	verdicts := make(map[string]meals.Verdict)
	for _, rater := range t.svc.Raters() {
		if v := req.GetString(rater, ""); v != "" {
			verdicts[rater] = meals.Verdict(v)
		}
	}

	name := req.GetString("name", "")
	mealID, ratingID, err := t.svc.Record(ctx, meals.RecordParams{
		Name:     name,
		Chef:     req.GetString("chef", ""),
		Date:     date,
		Verdicts: verdicts,
		Comments: req.GetString("comments", ""),
	})
	if err != nil {
		return errorResult(err)
	}

	up, total := meals.Tally([]meals.Rating{{Verdicts: verdicts}})
	return mcp.NewToolResultText(fmt.Sprintf(
		"Recorded rating `%s` for %s (meal `%s`) on %s: %d of %s up.",
		ratingID, strings.TrimSpace(name), mealID, date, up, plural(total, "vote"),
	)), nil
}

// MealsTopRatedTool handles meals_top_rated.
type MealsTopRatedTool struct {
	svc *meals.Service
}

// NewMealsTopRatedTool creates a MealsTopRatedTool.
func NewMealsTopRatedTool(svc *meals.Service) *MealsTopRatedTool {
	return &MealsTopRatedTool{svc: svc}
}

// Definition returns the MCP tool definition for meals_top_rated.
func (t *MealsTopRatedTool) Definition() mcp.Tool {
	return mcp.NewTool("meals_top_rated",
		mcp.WithDescription(
			"Rank meals by approval (share of up votes), ties broken by number of votes. "+
				"Meals nobody has voted on are not ranked.",
		),
	)
}

// Handle processes the meals_top_rated tool call.
func (t *MealsTopRatedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	top, err := t.svc.TopRated(ctx)
	if err != nil {
		return errorResult(err)
	}
	if len(top) == 0 {
		return mcp.NewToolResultText("No meal has any votes yet."), nil
	}
	var b strings.Builder
	b.WriteString("# Top rated meals\n\n")
	for i, r := range top {
		fmt.Fprintf(&b, "%d. %s: %.0f%% (%d of %s up)\n",
			i+1, r.Meal.Name, r.ApprovalRating, r.UpVotes, plural(r.TotalVotes, "vote"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// MealsRecentRatingsTool handles meals_recent_ratings.
type MealsRecentRatingsTool struct {
	svc *meals.Service
}

// NewMealsRecentRatingsTool creates a MealsRecentRatingsTool.
func NewMealsRecentRatingsTool(svc *meals.Service) *MealsRecentRatingsTool {
	return &MealsRecentRatingsTool{svc: svc}
}

// Definition returns the MCP tool definition for meals_recent_ratings.
func (t *MealsRecentRatingsTool) Definition() mcp.Tool {
	return mcp.NewTool("meals_recent_ratings",
		mcp.WithDescription("Show the latest rating events, newest first."),
		mcp.WithNumber("limit", mcp.Description("How many ratings to show (default: 10)")),
	)
}

// Handle processes the meals_recent_ratings tool call.
func (t *MealsRecentRatingsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ratings, err := t.svc.RecentRatings(ctx, intArg(req, "limit", 0))
	if err != nil {
		return errorResult(err)
	}
	if len(ratings) == 0 {
		return mcp.NewToolResultText("No ratings recorded yet."), nil
	}
	list, err := t.svc.ListMeals(ctx)
	if err != nil {
		return errorResult(err)
	}
	names := make(map[string]string, len(list))
	for _, m := range list {
		names[m.ID] = m.Name
	}

	var b strings.Builder
	for _, r := range ratings {
		fmt.Fprintf(&b, "- %s on %s (id: %s)\n", names[r.MealID], r.Date, r.ID)
		for _, rater := range t.svc.Raters() {
			if v, ok := r.Verdicts[rater]; ok {
				fmt.Fprintf(&b, "    %s: %s\n", rater, v)
			}
		}
		if r.Comments != "" {
			fmt.Fprintf(&b, "    \"%s\"\n", r.Comments)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// MealsDeleteTool handles meals_delete.
type MealsDeleteTool struct {
	svc *meals.Service
}

// NewMealsDeleteTool creates a MealsDeleteTool.
func NewMealsDeleteTool(svc *meals.Service) *MealsDeleteTool {
	return &MealsDeleteTool{svc: svc}
}

// Definition returns the MCP tool definition for meals_delete.
func (t *MealsDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("meals_delete",
		mcp.WithDescription("Delete a meal and every rating it received."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Meal id")),
	)
}

// Handle processes the meals_delete tool call.
func (t *MealsDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.svc.RemoveMeal(ctx, id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted meal `%s` and its ratings.", id)), nil
}

// MealsDeleteRatingTool handles meals_delete_rating.
type MealsDeleteRatingTool struct {
	svc *meals.Service
}

// NewMealsDeleteRatingTool creates a MealsDeleteRatingTool.
func NewMealsDeleteRatingTool(svc *meals.Service) *MealsDeleteRatingTool {
	return &MealsDeleteRatingTool{svc: svc}
}

// Definition returns the MCP tool definition for meals_delete_rating.
func (t *MealsDeleteRatingTool) Definition() mcp.Tool {
	return mcp.NewTool("meals_delete_rating",
		mcp.WithDescription("Delete one rating event. The meal itself is kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Rating id")),
	)
}

// Handle processes the meals_delete_rating tool call.
func (t *MealsDeleteRatingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.svc.RemoveRating(ctx, id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted rating `%s`.", id)), nil
}
