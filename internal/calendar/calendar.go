// Package calendar manages scheduled tasks: reminders and recurring chores
// that show up on the dashboard calendar.
package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/mission-control/internal/apperr"
)

var (
	timeNow = time.Now
	newID   = func() string { return uuid.NewString() }
)

// ScheduledTask is one calendar entry.
type ScheduledTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Recurrence  string    `json:"recurrence,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateParams holds the input for Service.Create.
type CreateParams struct {
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Recurrence  string    `json:"recurrence,omitempty"`
	Completed   bool      `json:"completed"`
}

// UpdateParams is a partial update; nil fields are left untouched.
type UpdateParams struct {
	Title       *string    `json:"title,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Recurrence  *string    `json:"recurrence,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// Repository is the record store as seen by the calendar.
type Repository interface {
	InsertScheduled(ctx context.Context, t ScheduledTask) error
	PatchScheduled(ctx context.Context, id string, p UpdateParams) (bool, error)
	DeleteScheduled(ctx context.Context, id string) error
	ListScheduled(ctx context.Context) ([]ScheduledTask, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]ScheduledTask, error)
}

// Service implements the calendar operations.
type Service struct {
	repo Repository
}

// NewService creates a calendar Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a scheduled task.
func (s *Service) Create(ctx context.Context, p CreateParams) (string, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return "", apperr.Validation("scheduled task title is required")
	}
	if p.ScheduledAt.IsZero() {
		return "", apperr.Validation("scheduled_at is required")
	}
	t := ScheduledTask{
		ID:          newID(),
		Title:       title,
		ScheduledAt: p.ScheduledAt.UTC().Truncate(time.Millisecond),
		Recurrence:  strings.TrimSpace(p.Recurrence),
		Completed:   p.Completed,
		CreatedAt:   timeNow().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.InsertScheduled(ctx, t); err != nil {
		return "", apperr.Store("insert scheduled task", err)
	}
	return t.ID, nil
}

// Update applies the supplied fields.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return apperr.Validation("scheduled task title must not be empty")
		}
		p.Title = &title
	}
	if p.ScheduledAt != nil {
		if p.ScheduledAt.IsZero() {
			return apperr.Validation("scheduled_at must not be zero")
		}
		at := p.ScheduledAt.UTC().Truncate(time.Millisecond)
		p.ScheduledAt = &at
	}
	found, err := s.repo.PatchScheduled(ctx, id, p)
	if err != nil {
		return apperr.Store("update scheduled task", err)
	}
	if !found {
		return apperr.NotFound("scheduled task", id)
	}
	return nil
}

// Remove deletes a scheduled task. Unknown ids are not an error.
func (s *Service) Remove(ctx context.Context, id string) error {
	return apperr.Store("delete scheduled task", s.repo.DeleteScheduled(ctx, id))
}

// List returns every scheduled task, most recently created first.
func (s *Service) List(ctx context.Context) ([]ScheduledTask, error) {
	tasks, err := s.repo.ListScheduled(ctx)
	if err != nil {
		return nil, apperr.Store("list scheduled tasks", err)
	}
	return tasks, nil
}

// Upcoming returns the incomplete tasks scheduled after now, soonest first.
func (s *Service) Upcoming(ctx context.Context, now time.Time) ([]ScheduledTask, error) {
	tasks, err := s.repo.ListUpcoming(ctx, now)
	if err != nil {
		return nil, apperr.Store("list upcoming tasks", err)
	}
	return tasks, nil
}
