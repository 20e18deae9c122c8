// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the record store, builds the
// module services from configuration and injects them into the tools,
// prompts and resources. No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/mission-control/internal/calendar"
	"github.com/HendryAvila/mission-control/internal/config"
	"github.com/HendryAvila/mission-control/internal/dashboard"
	"github.com/HendryAvila/mission-control/internal/logger"
	"github.com/HendryAvila/mission-control/internal/meals"
	"github.com/HendryAvila/mission-control/internal/notes"
	"github.com/HendryAvila/mission-control/internal/prompts"
	"github.com/HendryAvila/mission-control/internal/resources"
	"github.com/HendryAvila/mission-control/internal/stages"
	"github.com/HendryAvila/mission-control/internal/store"
	"github.com/HendryAvila/mission-control/internal/team"
	"github.com/HendryAvila/mission-control/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the server name advertised over MCP and HTTP.
const Name = "Mission Control"

// Services holds every module service, built over one record store.
type Services struct {
	Tasks    *stages.Board
	Content  *stages.Board
	Calendar *calendar.Service
	Notes    *notes.Service
	Team     *team.Service
	Meals    *meals.Service
	Summary  *dashboard.Builder
}

// NewServices builds the module services on top of db.
func NewServices(cfg config.Config, db *store.DB) *Services {
	items := db.StagedItems()
	s := &Services{
		Tasks:    stages.NewBoard("task", cfg.Tasks, items),
		Content:  stages.NewBoard("content", cfg.Content, items),
		Calendar: calendar.NewService(db.ScheduledTasks()),
		Notes:    notes.NewService(db.Notes(), cfg.NoteSearchLimit),
		Team:     team.NewService(db.Agents(), cfg.AgentStatuses),
		Meals:    meals.NewService(db.Meals(), cfg.Meals),
	}
	s.Summary = &dashboard.Builder{
		Tasks:    s.Tasks,
		Content:  s.Content,
		Calendar: s.Calendar,
		Notes:    s.Notes,
		Meals:    s.Meals,
	}
	return s
}

// Bootstrap opens the record store under cfg.DataDir and builds the
// services. The returned cleanup closes the store and is always non-nil.
func Bootstrap(cfg config.Config, log *logger.Logger) (*Services, func(), error) {
	db, err := store.Open(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, noop, fmt.Errorf("opening record store: %w", err)
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Warn("record store close failed", "error", err)
		}
	}
	log.Debug("record store opened", "data_dir", cfg.DataDir)
	return NewServices(cfg, db), cleanup, nil
}

// New creates the MCP server with every tool, prompt and resource
// registered.
func New(svcs *Services) *server.MCPServer {
	s := server.NewMCPServer(
		"mission-control",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerBoardTools(s, svcs.Tasks, "tasks")
	registerBoardTools(s, svcs.Content, "content")

	// --- Calendar ---

	calendarList := tools.NewCalendarListTool(svcs.Calendar)
	s.AddTool(calendarList.Definition(), calendarList.Handle)

	calendarCreate := tools.NewCalendarCreateTool(svcs.Calendar)
	s.AddTool(calendarCreate.Definition(), calendarCreate.Handle)

	calendarUpdate := tools.NewCalendarUpdateTool(svcs.Calendar)
	s.AddTool(calendarUpdate.Definition(), calendarUpdate.Handle)

	calendarDelete := tools.NewCalendarDeleteTool(svcs.Calendar)
	s.AddTool(calendarDelete.Definition(), calendarDelete.Handle)

	// --- Memory notes ---

	memoryList := tools.NewMemoryListTool(svcs.Notes)
	s.AddTool(memoryList.Definition(), memoryList.Handle)

	memorySearch := tools.NewMemorySearchTool(svcs.Notes)
	s.AddTool(memorySearch.Definition(), memorySearch.Handle)

	memoryCreate := tools.NewMemoryCreateTool(svcs.Notes)
	s.AddTool(memoryCreate.Definition(), memoryCreate.Handle)

	memoryUpdate := tools.NewMemoryUpdateTool(svcs.Notes)
	s.AddTool(memoryUpdate.Definition(), memoryUpdate.Handle)

	memoryDelete := tools.NewMemoryDeleteTool(svcs.Notes)
	s.AddTool(memoryDelete.Definition(), memoryDelete.Handle)

	// --- Team roster ---

	teamList := tools.NewTeamListTool(svcs.Team)
	s.AddTool(teamList.Definition(), teamList.Handle)

	teamCreate := tools.NewTeamCreateTool(svcs.Team)
	s.AddTool(teamCreate.Definition(), teamCreate.Handle)

	teamStatus := tools.NewTeamSetStatusTool(svcs.Team)
	s.AddTool(teamStatus.Definition(), teamStatus.Handle)

	teamDelete := tools.NewTeamDeleteTool(svcs.Team)
	s.AddTool(teamDelete.Definition(), teamDelete.Handle)

	// --- Meals ---

	mealsList := tools.NewMealsListTool(svcs.Meals)
	s.AddTool(mealsList.Definition(), mealsList.Handle)

	mealsRate := tools.NewMealsRateTool(svcs.Meals)
	s.AddTool(mealsRate.Definition(), mealsRate.Handle)

	mealsTop := tools.NewMealsTopRatedTool(svcs.Meals)
	s.AddTool(mealsTop.Definition(), mealsTop.Handle)

	mealsRecent := tools.NewMealsRecentRatingsTool(svcs.Meals)
	s.AddTool(mealsRecent.Definition(), mealsRecent.Handle)

	mealsDelete := tools.NewMealsDeleteTool(svcs.Meals)
	s.AddTool(mealsDelete.Definition(), mealsDelete.Handle)

	mealsDeleteRating := tools.NewMealsDeleteRatingTool(svcs.Meals)
	s.AddTool(mealsDeleteRating.Definition(), mealsDeleteRating.Handle)

	// --- Prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	dinnerPrompt := prompts.NewDinnerReviewPrompt(svcs.Meals.Raters())
	s.AddPrompt(dinnerPrompt.Definition(), dinnerPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(svcs.Summary)
	s.AddResource(resourceHandler.SummaryResource(), resourceHandler.HandleSummary)

	return s
}

// registerBoardTools registers the five tools of one staged-entity board.
func registerBoardTools(s *server.MCPServer, board *stages.Board, prefix string) {
	list := tools.NewBoardListTool(board, prefix)
	s.AddTool(list.Definition(), list.Handle)

	create := tools.NewBoardCreateTool(board, prefix)
	s.AddTool(create.Definition(), create.Handle)

	move := tools.NewBoardMoveTool(board, prefix)
	s.AddTool(move.Definition(), move.Handle)

	update := tools.NewBoardUpdateTool(board, prefix)
	s.AddTool(update.Definition(), update.Handle)

	del := tools.NewBoardDeleteTool(board, prefix)
	s.AddTool(del.Definition(), del.Handle)
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// serverInstructions tells the assistant what the dashboard holds and how
// to drive it.
func serverInstructions() string {
	return `You have access to Mission Control, the family dashboard.

## WHAT IS IN IT

- Task board (tasks_*): household tasks in backlog, todo, in_progress or done.
  Every task is assigned to "me" (the user) or "assistant" (you).
- Content pipeline (content_*): video ideas moving through idea, script,
  thumbnail, filming and published.
- Calendar (calendar_*): scheduled reminders, optionally recurring.
- Memories (memory_*): dated notes with full-text search.
- Team (team_*): the roster of agents and what they are responsible for.
- Meals (meals_*): thumbs up/down verdicts on dinners and the top-rated list.

## HOW TO WORK

- Read before you write: list or search first, then act on ids from the output.
- Stages can move in any direction; moving to the current stage is allowed.
- Deletes are idempotent. Deleting a meal also deletes its ratings.
- When you pick up a task assigned to "assistant", move it to in_progress,
  and to done when finished.
- For the morning briefing use the dashboard-status prompt; after dinner use
  dinner-review.`
}
