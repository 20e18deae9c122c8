// Package notes manages the dashboard's memory notes: dated free-text
// entries with full-text search.
package notes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/mission-control/internal/apperr"
)

const dateLayout = "2006-01-02"

var (
	timeNow = time.Now
	newID   = func() string { return uuid.NewString() }
)

// Note is one memory entry.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateParams holds the input for Service.Create.
type CreateParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// UpdateParams is a partial update; nil fields are left untouched.
type UpdateParams struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Date    *string `json:"date,omitempty"`
}

// Repository is the record store as seen by the notes service.
type Repository interface {
	InsertNote(ctx context.Context, n Note) error
	PatchNote(ctx context.Context, id string, p UpdateParams) (bool, error)
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context, limit int) ([]Note, error)
	SearchNotes(ctx context.Context, query string, limit int) ([]Note, error)
	CountNotes(ctx context.Context) (int, error)
}

// Service implements the note operations.
type Service struct {
	repo        Repository
	searchLimit int
}

// NewService creates a notes Service. searchLimit caps Search results when
// the caller does not pass its own limit.
func NewService(repo Repository, searchLimit int) *Service {
	if searchLimit <= 0 {
		searchLimit = 20
	}
	return &Service{repo: repo, searchLimit: searchLimit}
}

// Create validates and stores a note.
func (s *Service) Create(ctx context.Context, p CreateParams) (string, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return "", apperr.Validation("note title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return "", apperr.Validation("note content is required")
	}
	if err := validateDate(p.Date); err != nil {
		return "", err
	}
	n := Note{
		ID:        newID(),
		Title:     title,
		Content:   p.Content,
		Date:      p.Date,
		CreatedAt: timeNow().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.InsertNote(ctx, n); err != nil {
		return "", apperr.Store("insert note", err)
	}
	return n.ID, nil
}

// Update applies the supplied fields.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return apperr.Validation("note title must not be empty")
		}
		p.Title = &title
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return apperr.Validation("note content must not be empty")
	}
	if p.Date != nil {
		if err := validateDate(*p.Date); err != nil {
			return err
		}
	}
	found, err := s.repo.PatchNote(ctx, id, p)
	if err != nil {
		return apperr.Store("update note", err)
	}
	if !found {
		return apperr.NotFound("note", id)
	}
	return nil
}

// Remove deletes a note. Unknown ids are not an error.
func (s *Service) Remove(ctx context.Context, id string) error {
	return apperr.Store("delete note", s.repo.DeleteNote(ctx, id))
}

// List returns every note, most recently created first.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	notes, err := s.repo.ListNotes(ctx, 0)
	if err != nil {
		return nil, apperr.Store("list notes", err)
	}
	return notes, nil
}

// Count returns the number of stored notes.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.CountNotes(ctx)
	if err != nil {
		return 0, apperr.Store("count notes", err)
	}
	return n, nil
}

// Search matches query against titles and content. An empty query returns
// the most recent notes.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Note, error) {
	if limit <= 0 || limit > s.searchLimit {
		limit = s.searchLimit
	}
	var (
		notes []Note
		err   error
	)
	if strings.TrimSpace(query) == "" {
		notes, err = s.repo.ListNotes(ctx, limit)
	} else {
		notes, err = s.repo.SearchNotes(ctx, query, limit)
	}
	if err != nil {
		return nil, apperr.Store("search notes", err)
	}
	return notes, nil
}

func validateDate(date string) error {
	t, err := time.Parse(dateLayout, date)
	if err != nil || t.Format(dateLayout) != date {
		return apperr.Validation("invalid date %q: expected YYYY-MM-DD", date)
	}
	return nil
}
