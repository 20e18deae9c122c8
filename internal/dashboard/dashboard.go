// Package dashboard aggregates the headline numbers shown on the family
// dashboard's home page.
package dashboard

import (
	"context"
	"time"

	"github.com/HendryAvila/mission-control/internal/calendar"
	"github.com/HendryAvila/mission-control/internal/meals"
)

// StageCounter is implemented by *stages.Board.
type StageCounter interface {
	Counts(ctx context.Context) (map[string]int, error)
	ActiveStage() string
}

// UpcomingLister is implemented by *calendar.Service.
type UpcomingLister interface {
	Upcoming(ctx context.Context, now time.Time) ([]calendar.ScheduledTask, error)
}

// NoteCounter is implemented by *notes.Service.
type NoteCounter interface {
	Count(ctx context.Context) (int, error)
}

// MealRanker is implemented by *meals.Service.
type MealRanker interface {
	TopRated(ctx context.Context) ([]meals.Ranked, error)
}

// Summary is the dashboard home page. Totals count every stored item,
// including items in stages no longer configured.
type Summary struct {
	TotalTasks        int                     `json:"total_tasks"`
	ActiveTasks       int                     `json:"active_tasks"`
	TasksByStage      map[string]int          `json:"tasks_by_stage"`
	ContentItems      int                     `json:"content_items"`
	ContentByStage    map[string]int          `json:"content_by_stage"`
	UpcomingScheduled int                     `json:"upcoming_scheduled"`
	NextScheduled     *calendar.ScheduledTask `json:"next_scheduled,omitempty"`
	TotalMemories     int                     `json:"total_memories"`
	TopMeal           *meals.Ranked           `json:"top_meal,omitempty"`
	GeneratedAt       time.Time               `json:"generated_at"`
}

// Builder assembles a Summary from the module services.
type Builder struct {
	Tasks    StageCounter
	Content  StageCounter
	Calendar UpcomingLister
	Notes    NoteCounter
	Meals    MealRanker
}

var timeNow = time.Now

// Build computes the summary at the current time.
func (b *Builder) Build(ctx context.Context) (*Summary, error) {
	now := timeNow().UTC()
	sum := &Summary{GeneratedAt: now.Truncate(time.Millisecond)}

	taskCounts, err := b.Tasks.Counts(ctx)
	if err != nil {
		return nil, err
	}
	sum.TasksByStage = taskCounts
	sum.TotalTasks = total(taskCounts)
	if active := b.Tasks.ActiveStage(); active != "" {
		sum.ActiveTasks = taskCounts[active]
	}

	contentCounts, err := b.Content.Counts(ctx)
	if err != nil {
		return nil, err
	}
	sum.ContentByStage = contentCounts
	sum.ContentItems = total(contentCounts)

	upcoming, err := b.Calendar.Upcoming(ctx, now)
	if err != nil {
		return nil, err
	}
	sum.UpcomingScheduled = len(upcoming)
	if len(upcoming) > 0 {
		next := upcoming[0]
		sum.NextScheduled = &next
	}

	if sum.TotalMemories, err = b.Notes.Count(ctx); err != nil {
		return nil, err
	}

	top, err := b.Meals.TopRated(ctx)
	if err != nil {
		return nil, err
	}
	if len(top) > 0 {
		sum.TopMeal = &top[0]
	}
	return sum, nil
}

func total(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
